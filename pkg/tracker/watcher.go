package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/metrics"
	"k8s.io/klog"
)

//go:generate mockgen -destination=mock/mock_watcher.go -package=mock github.com/symcn/tracker/pkg/tracker Watcher

// Watcher is a live binding to the providers of one identity.
type Watcher interface {
	// OpenOnlyFirstTime opens the watcher against the directory the first time
	// it is called. Every later call, concurrent or not, does nothing.
	OpenOnlyFirstTime() error

	// Service returns the current best provider.
	Service() (interface{}, bool)

	// Services returns all current providers, never nil.
	Services() []interface{}

	// Close releases the directory handle.
	Close() error

	Identity() Identity
}

const (
	stateCreated int32 = iota
	stateOpen
	stateClosed
)

// lazyWatcher asks the directory for a handle only when it is opened, so a
// watcher which is never opened holds nothing.
type lazyWatcher struct {
	id        Identity
	directory directory.Directory

	// state is read without the lock on the hot path.
	state  int32
	mu     sync.Mutex
	handle directory.Handle
}

// NewWatcher creates an unopened watcher of id on dir.
func NewWatcher(dir directory.Directory, id Identity) Watcher {
	metrics.CreatedWatcherCounter.Inc()
	return &lazyWatcher{
		id:        id,
		directory: dir,
	}
}

func (w *lazyWatcher) OpenOnlyFirstTime() error {
	if atomic.LoadInt32(&w.state) != stateCreated {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if atomic.LoadInt32(&w.state) != stateCreated {
		return nil
	}

	start := time.Now()
	handle, err := w.directory.Open(w.id.String())
	if err != nil {
		klog.Errorf("Opening a watcher for [%s] has an error: %v", w.id, err)
		return err
	}
	metrics.OpeningWatcherHistogram.Observe(time.Since(start).Seconds())
	metrics.OpenedWatcherCounter.Inc()

	w.handle = handle
	atomic.StoreInt32(&w.state, stateOpen)
	klog.V(4).Infof("Watcher for [%s] has been opened", w.id)
	return nil
}

func (w *lazyWatcher) Service() (interface{}, bool) {
	if atomic.LoadInt32(&w.state) != stateOpen {
		return nil, false
	}
	return w.handle.Service()
}

func (w *lazyWatcher) Services() []interface{} {
	if atomic.LoadInt32(&w.state) != stateOpen {
		return []interface{}{}
	}
	services := w.handle.Services()
	if services == nil {
		return []interface{}{}
	}
	return services
}

func (w *lazyWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := atomic.SwapInt32(&w.state, stateClosed)
	if prev != stateOpen {
		return nil
	}

	metrics.ClosedWatcherCounter.Inc()
	klog.V(4).Infof("Closing the watcher for [%s]", w.id)
	return w.handle.Close()
}

func (w *lazyWatcher) Identity() Identity {
	return w.id
}
