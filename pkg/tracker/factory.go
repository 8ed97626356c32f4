package tracker

import "github.com/symcn/tracker/pkg/directory"

// Factory constructs the watchers of a register. Create must not talk to the
// directory: the watcher it returns may be dropped without being opened.
type Factory interface {
	Create(dir directory.Directory, id Identity) Watcher
}

// FactoryFunc adapts a function to a Factory.
type FactoryFunc func(dir directory.Directory, id Identity) Watcher

// Create ...
func (f FactoryFunc) Create(dir directory.Directory, id Identity) Watcher {
	return f(dir, id)
}

// DefaultFactory creates watchers which open lazily against the directory.
var DefaultFactory Factory = FactoryFunc(NewWatcher)
