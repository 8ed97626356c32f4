package zookeeper

import (
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/go-zookeeper/zk"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/symcn/tracker/pkg/types"
)

// fakeConn is an in-memory tree which fires one-shot watches like zookeeper does.
type fakeConn struct {
	mu       sync.Mutex
	nodes    map[string][]string
	watches  map[string][]chan zk.Event
	failNext error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		nodes:   make(map[string][]string),
		watches: make(map[string][]chan zk.Event),
	}
}

func (c *fakeConn) watch(path string) <-chan zk.Event {
	ch := make(chan zk.Event, 1)
	c.watches[path] = append(c.watches[path], ch)
	return ch
}

func (c *fakeConn) ChildrenW(path string) ([]string, *zk.Stat, <-chan zk.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failNext; err != nil {
		c.failNext = nil
		return nil, nil, nil, err
	}
	children, ok := c.nodes[path]
	if !ok {
		return nil, nil, nil, zk.ErrNoNode
	}
	return append([]string(nil), children...), &zk.Stat{}, c.watch(path), nil
}

func (c *fakeConn) ExistsW(path string) (bool, *zk.Stat, <-chan zk.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.nodes[path]
	return ok, &zk.Stat{}, c.watch(path), nil
}

func (c *fakeConn) set(path string, typ zk.EventType, children ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[path] = children
	c.fire(path, zk.Event{Type: typ, Path: path})
}

func (c *fakeConn) fire(path string, event zk.Event) {
	for _, ch := range c.watches[path] {
		ch <- event
		close(ch)
	}
	delete(c.watches, path)
}

func (c *fakeConn) pending(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watches[path])
}

func provider(host string, query string) string {
	return url.QueryEscape("dubbo://" + host + "/com.foo.Greeter?" + query)
}

func hostOf(v interface{}) string {
	return v.(*types.Instance).Host
}

var _ = Describe("Zookeeper directory", func() {
	const (
		service = "com.foo.Greeter"
		ppath   = "/dubbo/com.foo.Greeter/providers"
	)

	var (
		conn *fakeConn
		dir  *Directory
	)

	BeforeEach(func() {
		conn = newFakeConn()
		dir = NewDirectory(conn, DubboRootPath)
	})

	It("reads the providers and prefers the heaviest", func() {
		conn.set(ppath, zk.EventNodeChildrenChanged,
			provider("10.0.0.1:20880", "weight=50"),
			provider("10.0.0.2:20880", "weight=200"),
			provider("10.0.0.3:20880", "enabled=false&weight=900"),
			"%%%not-a-url",
		)

		h, err := dir.Open(service)
		Expect(err).NotTo(HaveOccurred())
		defer h.Close()

		s, ok := h.Service()
		Expect(ok).To(BeTrue())
		Expect(hostOf(s)).To(Equal("10.0.0.2"))
		Expect(s.(*types.Instance).Service).To(Equal(service))

		all := h.Services()
		Expect(all).To(HaveLen(2))
		Expect(hostOf(all[1])).To(Equal("10.0.0.1"))
	})

	It("follows the changes of the providers", func() {
		conn.set(ppath, zk.EventNodeChildrenChanged, provider("10.0.0.1:20880", ""))

		h, err := dir.Open(service)
		Expect(err).NotTo(HaveOccurred())
		defer h.Close()

		conn.set(ppath, zk.EventNodeChildrenChanged,
			provider("10.0.0.1:20880", ""),
			provider("10.0.0.9:20880", "weight=101"),
		)
		Eventually(func() string {
			s, _ := h.Service()
			if s == nil {
				return ""
			}
			return hostOf(s)
		}).Should(Equal("10.0.0.9"))

		conn.set(ppath, zk.EventNodeChildrenChanged)
		Eventually(h.Services).Should(BeEmpty())
	})

	It("waits for a missing providers node", func() {
		h, err := dir.Open(service)
		Expect(err).NotTo(HaveOccurred())
		defer h.Close()

		_, ok := h.Service()
		Expect(ok).To(BeFalse())
		Expect(conn.pending(ppath)).To(Equal(1))

		conn.set(ppath, zk.EventNodeCreated, provider("10.0.0.1:20880", ""))
		Eventually(func() bool {
			_, ok := h.Service()
			return ok
		}).Should(BeTrue())
	})

	It("retries when watching fails", func() {
		conn.set(ppath, zk.EventNodeChildrenChanged, provider("10.0.0.1:20880", ""))
		h, err := dir.Open(service)
		Expect(err).NotTo(HaveOccurred())
		defer h.Close()

		conn.mu.Lock()
		conn.failNext = errors.New("connection loss")
		conn.mu.Unlock()
		conn.set(ppath, zk.EventNodeChildrenChanged, provider("10.0.0.7:20880", ""))

		Eventually(func() string {
			s, _ := h.Service()
			if s == nil {
				return ""
			}
			return hostOf(s)
		}).Should(Equal("10.0.0.7"))
	})

	It("fails to open when zookeeper refuses the watch", func() {
		conn.failNext = errors.New("connection loss")
		_, err := dir.Open(service)
		Expect(err).To(MatchError(ContainSubstring("connection loss")))
	})

	It("forgets the providers once closed", func() {
		conn.set(ppath, zk.EventNodeChildrenChanged, provider("10.0.0.1:20880", ""))
		h, err := dir.Open(service)
		Expect(err).NotTo(HaveOccurred())

		Expect(h.Close()).To(Succeed())
		Expect(h.Close()).To(Succeed())
		_, ok := h.Service()
		Expect(ok).To(BeFalse())

		conn.set(ppath, zk.EventNodeChildrenChanged, provider("10.0.0.2:20880", ""))
		Consistently(h.Services, 100*time.Millisecond).Should(BeEmpty())
	})
})
