// Package nacos finds service providers through the naming service of nacos.
package nacos

import (
	"sync"

	"github.com/nacos-group/nacos-sdk-go/clients"
	"github.com/nacos-group/nacos-sdk-go/common/constant"
	"github.com/nacos-group/nacos-sdk-go/model"
	"github.com/nacos-group/nacos-sdk-go/vo"
	"github.com/pkg/errors"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/option"
	"github.com/symcn/tracker/pkg/utils"
	"k8s.io/klog"
)

const defaultPort = 8848

func init() {
	directory.Register("nacos", New)
}

// namingClient is the part of naming_client.INamingClient a directory uses.
type namingClient interface {
	SelectAllInstances(param vo.SelectAllInstancesParam) ([]model.Instance, error)
	Subscribe(param *vo.SubscribeParam) error
	Unsubscribe(param *vo.SubscribeParam) error
}

// Directory ...
type Directory struct {
	client   namingClient
	group    string
	clusters []string
}

// New creates a naming client on the nacos servers of opt.Address.
func New(opt option.Directory) (directory.Client, error) {
	var serverConfigs []constant.ServerConfig
	for _, addr := range opt.Address {
		host, port := utils.SplitHostPort(addr, defaultPort)
		serverConfigs = append(serverConfigs, constant.ServerConfig{
			IpAddr:      host,
			Port:        port,
			ContextPath: "/nacos",
		})
	}
	if len(serverConfigs) == 0 {
		return nil, errors.New("no nacos server address has been configured")
	}

	klog.Info("Starting create a new nacos client.")
	nc, err := clients.CreateNamingClient(map[string]interface{}{
		"serverConfigs": serverConfigs,
		"clientConfig": constant.ClientConfig{
			NamespaceId:         opt.Namespace,
			TimeoutMs:           uint64(opt.Timeout.Milliseconds()),
			BeatInterval:        5 * 1000,
			ListenInterval:      30 * 1000,
			NotLoadCacheAtStart: true,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create nacos naming client")
	}
	return NewDirectory(nc, opt.Group, opt.Clusters), nil
}

// NewDirectory ...
func NewDirectory(client namingClient, group string, clusters []string) *Directory {
	return &Directory{
		client:   client,
		group:    group,
		clusters: clusters,
	}
}

// Open loads the current instances of the service and subscribes to its changes.
func (d *Directory) Open(name string) (directory.Handle, error) {
	h := &handle{
		client:  d.client,
		service: name,
	}

	instances, err := d.client.SelectAllInstances(vo.SelectAllInstancesParam{
		ServiceName: name,
		GroupName:   d.group,
		Clusters:    d.clusters,
	})
	if err != nil {
		// nacos answers with an error for a service without instances,
		// the subscription will fill the cache as soon as there are some.
		klog.Warningf("Selecting the instances of [%s] has an error: %v", name, err)
	} else {
		h.replace(fromInstances(name, instances))
	}

	h.param = &vo.SubscribeParam{
		ServiceName: name,
		GroupName:   d.group,
		Clusters:    d.clusters,
		SubscribeCallback: func(services []model.SubscribeService, err error) {
			if err != nil {
				klog.Errorf("Subscription of [%s] has an error: %v", name, err)
				return
			}
			h.replace(fromSubscribeServices(name, services))
		},
	}
	if err := d.client.Subscribe(h.param); err != nil {
		return nil, errors.Wrapf(err, "subscribe service %s", name)
	}
	return h, nil
}

// Stop ...
func (d *Directory) Stop() {}

type handle struct {
	client  namingClient
	service string
	param   *vo.SubscribeParam

	mu        sync.RWMutex
	instances []*instanceView
	closed    bool
}

func (h *handle) replace(instances []*instanceView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.instances = instances
}

func (h *handle) Service() (interface{}, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.instances) == 0 {
		return nil, false
	}
	return h.instances[0].Instance, true
}

func (h *handle) Services() []interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	values := make([]interface{}, 0, len(h.instances))
	for _, i := range h.instances {
		values = append(values, i.Instance)
	}
	return values
}

func (h *handle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.instances = nil
	h.mu.Unlock()

	if err := h.client.Unsubscribe(h.param); err != nil {
		return errors.Wrapf(err, "unsubscribe service %s", h.service)
	}
	return nil
}
