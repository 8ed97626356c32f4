// Package directory describes the service directory a tracker watches and keeps
// the table of directory backends which can be selected by type.
package directory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/symcn/tracker/pkg/option"
	"k8s.io/klog"
)

//go:generate mockgen -destination=mock/mock_directory.go -package=mock github.com/symcn/tracker/pkg/directory Directory,Handle

// Directory opens watch handles on the services it knows about.
type Directory interface {
	// Open begins monitoring the service with the given name. It is called at
	// most once per tracked service.
	Open(name string) (Handle, error)
}

// Handle is a live binding to the providers of one service.
type Handle interface {
	// Service returns the current best provider, false when there is none.
	Service() (interface{}, bool)

	// Services returns all current providers, best first. It never returns nil.
	Services() []interface{}

	// Close stops monitoring and releases the resources held by the handle.
	Close() error
}

// Client is a directory backed by an external system which has to be stopped
// when the process exits.
type Client interface {
	Directory

	Stop()
}

// Constructor builds a directory client from the options.
type Constructor func(opt option.Directory) (Client, error)

var (
	mu           sync.RWMutex
	constructors = make(map[string]Constructor)
)

// Register makes a directory backend available under the given type.
func Register(typ string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := constructors[typ]; ok {
		klog.Fatalf("repeat registry [directory instance]: %s", typ)
	}
	constructors[typ] = c
}

// New creates the directory client configured by opt.Type.
func New(opt option.Directory) (Client, error) {
	mu.RLock()
	c, ok := constructors[opt.Type]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("directory {%s} was not implemented", opt.Type)
	}
	return c(opt)
}

// Types lists the registered backends.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()

	var types []string
	for t := range constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
