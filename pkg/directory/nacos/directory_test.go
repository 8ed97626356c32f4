package nacos

import (
	"errors"
	"sync"
	"testing"

	"github.com/nacos-group/nacos-sdk-go/model"
	"github.com/nacos-group/nacos-sdk-go/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symcn/tracker/pkg/types"
)

type fakeNamingClient struct {
	mu           sync.Mutex
	instances    []model.Instance
	selectErr    error
	subscribeErr error
	subscribed   map[string]*vo.SubscribeParam
	unsubscribed []*vo.SubscribeParam
}

func newFakeNamingClient() *fakeNamingClient {
	return &fakeNamingClient{subscribed: make(map[string]*vo.SubscribeParam)}
}

func (c *fakeNamingClient) SelectAllInstances(param vo.SelectAllInstancesParam) ([]model.Instance, error) {
	return c.instances, c.selectErr
}

func (c *fakeNamingClient) Subscribe(param *vo.SubscribeParam) error {
	if c.subscribeErr != nil {
		return c.subscribeErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed[param.ServiceName] = param
	return nil
}

func (c *fakeNamingClient) Unsubscribe(param *vo.SubscribeParam) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribed, param.ServiceName)
	c.unsubscribed = append(c.unsubscribed, param)
	return nil
}

func (c *fakeNamingClient) push(service string, services []model.SubscribeService, err error) {
	c.mu.Lock()
	param := c.subscribed[service]
	c.mu.Unlock()
	if param != nil {
		param.SubscribeCallback(services, err)
	}
}

func hostOf(v interface{}) string {
	return v.(*types.Instance).Host
}

func TestOpenSelectsHealthyInstances(t *testing.T) {
	client := newFakeNamingClient()
	client.instances = []model.Instance{
		{Ip: "10.0.0.1", Port: 8080, Weight: 0.5, Enable: true, Healthy: true, ClusterName: "a"},
		{Ip: "10.0.0.2", Port: 8080, Weight: 1, Enable: true, Healthy: true, Metadata: map[string]string{"protocol": "grpc"}},
		{Ip: "10.0.0.3", Port: 8080, Weight: 9, Enable: true, Healthy: false},
		{Ip: "10.0.0.4", Port: 8080, Weight: 9, Enable: false, Healthy: true},
	}
	d := NewDirectory(client, "DEFAULT_GROUP", nil)

	h, err := d.Open("greeter")
	require.NoError(t, err)

	s, ok := h.Service()
	require.True(t, ok)
	best := s.(*types.Instance)
	assert.Equal(t, "10.0.0.2", best.Host)
	assert.Equal(t, 100, best.Weight)
	assert.Equal(t, "grpc", best.Port.Protocol)
	assert.Equal(t, "10.0.0.2:8080", best.Address())

	all := h.Services()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[1].(*types.Instance).Labels["cluster"])
	assert.Equal(t, 50, all[1].(*types.Instance).Weight)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.Len(t, client.unsubscribed, 1)
	_, ok = h.Service()
	assert.False(t, ok)
}

func TestSubscriptionUpdates(t *testing.T) {
	client := newFakeNamingClient()
	client.selectErr = errors.New("instance list is empty")
	d := NewDirectory(client, "DEFAULT_GROUP", []string{"a"})

	h, err := d.Open("greeter")
	require.NoError(t, err)
	_, ok := h.Service()
	assert.False(t, ok)

	client.push("greeter", []model.SubscribeService{
		{Ip: "10.0.0.1", Port: 8080, Weight: 1, Enable: true, Valid: true},
		{Ip: "10.0.0.2", Port: 8080, Weight: 2, Enable: true, Valid: true},
		{Ip: "10.0.0.3", Port: 8080, Weight: 3, Enable: true, Valid: false},
	}, nil)

	s, ok := h.Service()
	require.True(t, ok)
	assert.Equal(t, "10.0.0.2", hostOf(s))

	// a failed push keeps what we have
	client.push("greeter", nil, errors.New("timeout"))
	assert.Len(t, h.Services(), 2)

	require.NoError(t, h.Close())
	client.push("greeter", []model.SubscribeService{
		{Ip: "10.0.0.9", Port: 8080, Weight: 1, Enable: true, Valid: true},
	}, nil)
	assert.Empty(t, h.Services())
}

func TestOpenFailsWhenSubscribeFails(t *testing.T) {
	client := newFakeNamingClient()
	client.subscribeErr = errors.New("server is down")
	d := NewDirectory(client, "DEFAULT_GROUP", nil)

	_, err := d.Open("greeter")
	assert.EqualError(t, err, "subscribe service greeter: server is down")
}
