// Package file reads the providers of services from a yaml file and follows
// its changes.
//
//	services:
//	  com.foo.Greeter:
//	  - host: 10.0.0.1
//	    port: 20880
//	    protocol: dubbo
//	    weight: 50
//	    labels:
//	      version: v1
package file

import (
	"io/ioutil"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/symcn/tracker/pkg/debounce"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/metrics"
	"github.com/symcn/tracker/pkg/option"
	"github.com/symcn/tracker/pkg/types"
	"k8s.io/klog"
)

func init() {
	directory.Register("file", New)
}

type serviceFile struct {
	Services map[string][]entry `json:"services"`
}

type entry struct {
	Host     string            `json:"host"`
	Port     int               `json:"port,omitempty"`
	Protocol string            `json:"protocol,omitempty"`
	Weight   *int              `json:"weight,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}

type snapshot map[string][]*types.Instance

type reloadRequest struct{}

func (r reloadRequest) Merge(debounce.Request) debounce.Request {
	return r
}

// Directory ...
type Directory struct {
	path     string
	current  atomic.Value
	watcher  *fsnotify.Watcher
	debounce *debounce.Debounce
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New ...
func New(opt option.Directory) (directory.Client, error) {
	return NewDirectory(opt.File, opt.ReloadInterval)
}

// NewDirectory loads the file and starts following it. Bursts of changes are
// applied once they have settled for wait.
func NewDirectory(path string, wait time.Duration) (*Directory, error) {
	if path == "" {
		return nil, errors.New("no service file has been configured")
	}
	d := &Directory{
		path:   filepath.Clean(path),
		stopCh: make(chan struct{}),
	}
	if err := d.Reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	// editors usually replace the file, so its directory is watched.
	if err := w.Add(filepath.Dir(d.path)); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "watching directory of %s", d.path)
	}
	d.watcher = w
	d.debounce = debounce.New(wait, 10*wait, func(debounce.Request) {
		if err := d.Reload(); err != nil {
			klog.Errorf("Reloading the service file %s has an error, keep the previous one: %v", d.path, err)
		}
	})

	go d.loop()
	return d, nil
}

// Reload reads the file again and replaces the providers of every service.
func (d *Directory) Reload() error {
	data, err := ioutil.ReadFile(d.path)
	if err != nil {
		return errors.Wrapf(err, "read service file %s", d.path)
	}

	var sf serviceFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return errors.Wrapf(err, "parse service file %s", d.path)
	}

	s := make(snapshot, len(sf.Services))
	for name, entries := range sf.Services {
		instances := make([]*types.Instance, 0, len(entries))
		for _, e := range entries {
			instances = append(instances, e.toInstance(name))
		}
		types.SortByWeight(instances)
		s[name] = instances
	}
	d.current.Store(s)
	klog.Infof("Loaded %d services from %s", len(s), d.path)
	return nil
}

func (d *Directory) loop() {
	for {
		select {
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != d.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			metrics.DirectoryEventCounter.WithLabelValues("file").Inc()
			d.debounce.Put(reloadRequest{})
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			klog.Errorf("Watching the service file %s has an error: %v", d.path, err)
		case <-d.stopCh:
			return
		}
	}
}

// Open ...
func (d *Directory) Open(name string) (directory.Handle, error) {
	return &handle{dir: d, name: name}, nil
}

// Stop stops following the file.
func (d *Directory) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.debounce.Close()
		if err := d.watcher.Close(); err != nil {
			klog.Errorf("Closing the watcher of %s has an error: %v", d.path, err)
		}
	})
}

func (d *Directory) instances(name string) []*types.Instance {
	s, _ := d.current.Load().(snapshot)
	return s[name]
}

func (e entry) toInstance(service string) *types.Instance {
	i := &types.Instance{
		Service: service,
		Host:    e.Host,
		Weight:  types.DefaultWeight,
		Labels:  make(map[string]string, len(e.Labels)),
	}
	if e.Port > 0 {
		i.Port = &types.Port{
			Protocol: e.Protocol,
			Port:     strconv.Itoa(e.Port),
		}
	}
	if e.Weight != nil {
		i.Weight = *e.Weight
	}
	for k, v := range e.Labels {
		i.Labels[k] = v
	}
	return i
}

type handle struct {
	dir    *Directory
	name   string
	closed int32
}

func (h *handle) Service() (interface{}, bool) {
	if atomic.LoadInt32(&h.closed) == 1 {
		return nil, false
	}
	instances := h.dir.instances(h.name)
	if len(instances) == 0 {
		return nil, false
	}
	return instances[0], true
}

func (h *handle) Services() []interface{} {
	if atomic.LoadInt32(&h.closed) == 1 {
		return []interface{}{}
	}
	return types.ToValues(h.dir.instances(h.name))
}

func (h *handle) Close() error {
	atomic.StoreInt32(&h.closed, 1)
	return nil
}
