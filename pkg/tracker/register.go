// Package tracker gives on-demand access to the services of a directory.
//
// A Register is usually created when a process starts and closed when it stops.
// The first lookup of an identity creates and opens a watcher for it; later
// lookups are served from that watcher's live binding to the directory.
package tracker

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/metrics"
	"github.com/symcn/tracker/pkg/utils"
	"k8s.io/klog"
)

// Option configures a Register.
type Option func(r *Register)

// WithFactory replaces the factory used to create watchers.
func WithFactory(f Factory) Option {
	return func(r *Register) {
		r.factory = f
	}
}

// WithPreloadWorkers sets how many watchers Preload opens concurrently.
func WithPreloadWorkers(n int) Option {
	return func(r *Register) {
		if n > 0 {
			r.preloadWorkers = n
		}
	}
}

// Register holds at most one watcher per identity.
type Register struct {
	directory      directory.Directory
	factory        Factory
	watchers       *xsync.MapOf[Identity, Watcher]
	preloadWorkers int
}

// NewRegister creates a register of the services in dir.
func NewRegister(dir directory.Directory, opts ...Option) *Register {
	r := &Register{
		directory:      dir,
		factory:        DefaultFactory,
		watchers:       xsync.NewMapOf[Identity, Watcher](),
		preloadWorkers: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// watcher returns the watcher of record for id, creating it when needed.
func (r *Register) watcher(id Identity) Watcher {
	if w, ok := r.watchers.Load(id); ok {
		return w
	}

	candidate := r.factory.Create(r.directory, id)
	w, loaded := r.watchers.LoadOrStore(id, candidate)
	if loaded {
		// another goroutine won, the candidate was never opened.
		metrics.DiscardedWatcherCounter.Inc()
		klog.V(4).Infof("Dropped a duplicated watcher for [%s]", id)
		return w
	}

	metrics.TrackedWatcherGauge.Inc()
	klog.V(4).Infof("Tracking a new service [%s]", id)
	return w
}

func (r *Register) openedWatcher(id Identity) (Watcher, error) {
	w := r.watcher(id)
	if err := w.OpenOnlyFirstTime(); err != nil {
		return nil, err
	}
	return w, nil
}

// GetService returns the current best provider of id, or a *NotFoundError
// when the directory has none.
func (r *Register) GetService(id Identity) (interface{}, error) {
	w, err := r.openedWatcher(id)
	if err != nil {
		metrics.LookupCounter.WithLabelValues(metrics.ModeRequired, metrics.ResultError).Inc()
		return nil, err
	}

	s, ok := w.Service()
	if !ok {
		metrics.LookupCounter.WithLabelValues(metrics.ModeRequired, metrics.ResultNotFound).Inc()
		return nil, &NotFoundError{Name: w.Identity().String()}
	}
	metrics.LookupCounter.WithLabelValues(metrics.ModeRequired, metrics.ResultFound).Inc()
	return s, nil
}

// GetOptionalService returns the current best provider of id, false when the
// directory has none. The error only reports a failure of the directory.
func (r *Register) GetOptionalService(id Identity) (interface{}, bool, error) {
	w, err := r.openedWatcher(id)
	if err != nil {
		metrics.LookupCounter.WithLabelValues(metrics.ModeOptional, metrics.ResultError).Inc()
		return nil, false, err
	}

	s, ok := w.Service()
	if !ok {
		metrics.LookupCounter.WithLabelValues(metrics.ModeOptional, metrics.ResultNotFound).Inc()
		return nil, false, nil
	}
	metrics.LookupCounter.WithLabelValues(metrics.ModeOptional, metrics.ResultFound).Inc()
	return s, true, nil
}

// GetServices returns every current provider of id in the directory's order.
// The result is empty, not nil, when there is none.
func (r *Register) GetServices(id Identity) ([]interface{}, error) {
	w, err := r.openedWatcher(id)
	if err != nil {
		metrics.LookupCounter.WithLabelValues(metrics.ModeAll, metrics.ResultError).Inc()
		return []interface{}{}, err
	}

	services := w.Services()
	result := metrics.ResultFound
	if len(services) == 0 {
		result = metrics.ResultNotFound
	}
	metrics.LookupCounter.WithLabelValues(metrics.ModeAll, result).Inc()
	return services, nil
}

// Preload opens the watchers of ids concurrently so that the first lookups
// don't pay for it. It returns the first error met.
func (r *Register) Preload(ids ...Identity) error {
	if len(ids) == 0 {
		return nil
	}

	pool := utils.NewWorkerPool(r.preloadWorkers)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, id := range ids {
		id := id
		wg.Add(1)
		pool.Schedule(func() {
			defer wg.Done()
			if _, err := r.openedWatcher(id); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	pool.Stop()
	return firstErr
}

// Len returns the number of tracked identities.
func (r *Register) Len() int {
	return r.watchers.Size()
}

// Identities returns the tracked identities.
func (r *Register) Identities() []Identity {
	ids := make([]Identity, 0, r.watchers.Size())
	r.watchers.Range(func(id Identity, _ Watcher) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Close closes every tracked watcher once. All of them are closed even if some
// fail; the first error is returned.
func (r *Register) Close() error {
	var watchers []Watcher
	r.watchers.Range(func(_ Identity, w Watcher) bool {
		watchers = append(watchers, w)
		return true
	})

	klog.Infof("Closing %d watchers of the register", len(watchers))
	var firstErr error
	for _, w := range watchers {
		if err := w.Close(); err != nil {
			klog.Errorf("Closing the watcher for [%s] has an error: %v", w.Identity(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
