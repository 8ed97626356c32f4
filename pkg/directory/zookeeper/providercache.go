package zookeeper

import (
	"sort"
	"sync"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/symcn/tracker/pkg/metrics"
	"github.com/symcn/tracker/pkg/types"
	"k8s.io/klog"
)

// RetryInterval is how long a provider cache waits before watching its path
// again after zookeeper refused it.
var RetryInterval = time.Second

// providerCache keeps the providers of one service in sync with the children
// of its providers node.
type providerCache struct {
	conn    conn
	service string
	path    string

	mu        sync.RWMutex
	instances []*types.Instance

	stopCh         chan struct{}
	stopOnce       sync.Once
	zkEventCounter int64
}

func newProviderCache(c conn, service string, path string) (*providerCache, error) {
	klog.Infof("=======> Create a provider cache for path: [%s]", path)

	p := &providerCache{
		conn:    c,
		service: service,
		path:    path,
		stopCh:  make(chan struct{}),
	}

	ch, err := p.watchChildren()
	if err != nil {
		klog.Errorf("Failed to watch zk path %s: %v", path, err)
		return nil, err
	}
	go p.loop(ch)
	return p, nil
}

// watchChildren
//
// 1.Listing and watching this node's children
// 2.Replacing the cached instances with these children
// 3.Watching the creation of the node instead if it doesn't exist yet
func (p *providerCache) watchChildren() (<-chan zk.Event, error) {
	children, _, ch, err := p.conn.ChildrenW(p.path)
	if err == zk.ErrNoNode {
		exists, _, ech, err := p.conn.ExistsW(p.path)
		if err != nil {
			return nil, err
		}
		if exists {
			// created between the two calls
			return p.watchChildren()
		}
		klog.Warningf("The path [%s] doesn't exist, waiting for it to be created", p.path)
		p.replace(nil)
		return ech, nil
	}
	if err != nil {
		return nil, err
	}

	klog.V(4).Infof("The children of the watched path [%s]:\n%v", p.path, children)
	p.replace(children)
	return ch, nil
}

func (p *providerCache) loop(ch <-chan zk.Event) {
	for {
		select {
		case event, ok := <-ch:
			if ok {
				p.onEvent(&event)
				if event.Type == zk.EventNotWatching {
					return
				}
			}
			if ch = p.rewatch(); ch == nil {
				return
			}
		case <-p.stopCh:
			return
		}
	}
}

// rewatch keeps retrying until the path is watched again or the cache is
// stopped, in which case it returns nil.
func (p *providerCache) rewatch() <-chan zk.Event {
	for {
		ch, err := p.watchChildren()
		if err == nil {
			return ch
		}
		klog.Errorf("Watching on path [%s]'s children has an error: %v", p.path, err)

		select {
		case <-time.After(RetryInterval):
		case <-p.stopCh:
			return nil
		}
	}
}

func (p *providerCache) onEvent(event *zk.Event) {
	klog.V(4).Infof("[===== RECEIVED ZK ORIGINAL EVENT =====]: [%s]:[%d]:[%s]:[%v]:[%s]",
		p.service, p.zkEventCounter, p.path, event.Type, event.Path)
	metrics.DirectoryEventCounter.WithLabelValues("zk").Inc()
	p.zkEventCounter++

	if event.Type == zk.EventNotWatching {
		klog.Warningf("Watching on [%s] has been stopped by zookeeper: %v", p.path, event.Err)
		p.replace(nil)
	}
}

// replace rebuilds the instances from the raw provider urls.
func (p *providerCache) replace(rawURLs []string) {
	sorted := append([]string(nil), rawURLs...)
	sort.Strings(sorted)

	instances := make([]*types.Instance, 0, len(sorted))
	for _, ru := range sorted {
		i, err := types.ParseInstance(p.service, ru)
		if err != nil {
			klog.Errorf("Make a instance of [%s] has an error: %v", p.service, err)
			continue
		}
		if i.Labels["enabled"] == "false" {
			continue
		}
		instances = append(instances, i)
	}
	types.SortByWeight(instances)

	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.stopCh:
		return
	default:
	}
	p.instances = instances
}

func (p *providerCache) Service() (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.instances) == 0 {
		return nil, false
	}
	return p.instances[0], true
}

func (p *providerCache) Services() []interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return types.ToValues(p.instances)
}

func (p *providerCache) Close() error {
	p.stopOnce.Do(func() {
		klog.Infof("Stop the provider cache of path: [%s]", p.path)
		close(p.stopCh)
		p.mu.Lock()
		p.instances = nil
		p.mu.Unlock()
	})
	return nil
}
