// Package memory is an in-process service directory. Services are bound and
// unbound by the process itself, handles always see the current bindings.
package memory

import (
	"sort"
	"sync"

	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/option"
	"k8s.io/klog"
)

func init() {
	directory.Register("memory", func(opt option.Directory) (directory.Client, error) {
		return New(), nil
	})
}

// Directory ...
type Directory struct {
	mu       sync.RWMutex
	seq      int64
	bindings map[string][]*Registration
	opened   map[string]int
	closed   map[string]int
}

// Registration is one bound service instance.
type Registration struct {
	dir     *Directory
	name    string
	id      int64
	ranking int
	value   interface{}
}

// New ...
func New() *Directory {
	return &Directory{
		bindings: make(map[string][]*Registration),
		opened:   make(map[string]int),
		closed:   make(map[string]int),
	}
}

// Bind makes value a provider of the service name. Among the providers of a
// service the one with the highest ranking is the best, then the earliest bound.
func (d *Directory) Bind(name string, value interface{}, ranking int) *Registration {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	r := &Registration{
		dir:     d,
		name:    name,
		id:      d.seq,
		ranking: ranking,
		value:   value,
	}
	regs := append(d.bindings[name], r)
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].ranking != regs[j].ranking {
			return regs[i].ranking > regs[j].ranking
		}
		return regs[i].id < regs[j].id
	})
	d.bindings[name] = regs
	klog.V(4).Infof("Bound a provider of [%s] with ranking %d", name, ranking)
	return r
}

// Unregister removes the provider from the directory. It's a no-op the second time.
func (r *Registration) Unregister() {
	d := r.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	regs := d.bindings[r.name]
	for i, reg := range regs {
		if reg == r {
			d.bindings[r.name] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Open ...
func (d *Directory) Open(name string) (directory.Handle, error) {
	d.mu.Lock()
	d.opened[name]++
	d.mu.Unlock()

	return &handle{dir: d, name: name}, nil
}

// Opened returns how many handles of name have been opened.
func (d *Directory) Opened(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.opened[name]
}

// Closed returns how many handles of name have been closed.
func (d *Directory) Closed(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed[name]
}

// Stop ...
func (d *Directory) Stop() {}

func (d *Directory) values(name string) []interface{} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	regs := d.bindings[name]
	values := make([]interface{}, 0, len(regs))
	for _, r := range regs {
		values = append(values, r.value)
	}
	return values
}

type handle struct {
	dir  *Directory
	name string

	mu     sync.RWMutex
	closed bool
}

func (h *handle) Service() (interface{}, bool) {
	values := h.Services()
	if len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

func (h *handle) Services() []interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return []interface{}{}
	}
	return h.dir.values(h.name)
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	h.dir.mu.Lock()
	h.dir.closed[h.name]++
	h.dir.mu.Unlock()
	return nil
}
