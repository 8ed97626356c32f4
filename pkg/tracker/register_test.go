package tracker_test

import (
	"fmt"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/symcn/tracker/pkg/directory"
	"github.com/symcn/tracker/pkg/directory/memory"
	"github.com/symcn/tracker/pkg/tracker"
)

// countingWatcher records the calls which reach a watcher built by the register.
type countingWatcher struct {
	tracker.Watcher
	opens  int32
	closes int32
}

func (w *countingWatcher) OpenOnlyFirstTime() error {
	atomic.AddInt32(&w.opens, 1)
	return w.Watcher.OpenOnlyFirstTime()
}

func (w *countingWatcher) Close() error {
	atomic.AddInt32(&w.closes, 1)
	return w.Watcher.Close()
}

type countingFactory struct {
	mu      sync.Mutex
	created []*countingWatcher
}

func (f *countingFactory) Create(dir directory.Directory, id tracker.Identity) tracker.Watcher {
	w := &countingWatcher{Watcher: tracker.NewWatcher(dir, id)}
	f.mu.Lock()
	f.created = append(f.created, w)
	f.mu.Unlock()
	return w
}

type failingDirectory struct {
	calls int32
}

func (d *failingDirectory) Open(name string) (directory.Handle, error) {
	atomic.AddInt32(&d.calls, 1)
	return nil, errors.New("directory is down")
}

var _ = Describe("Register", func() {
	var (
		dir *memory.Directory
		r   *tracker.Register
	)

	BeforeEach(func() {
		dir = memory.New()
		r = tracker.NewRegister(dir)
	})

	AfterEach(func() {
		Expect(r.Close()).To(Succeed())
	})

	Context("with A bound to 100 and B unbound", func() {
		BeforeEach(func() {
			dir.Bind("A", 100, 0)
		})

		It("returns the bound value of A", func() {
			s, err := r.GetService("A")
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(100))

			s, ok, err := r.GetOptionalService("A")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(s).To(Equal(100))

			all, err := r.GetServices("A")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(Equal([]interface{}{100}))
		})

		It("reports B as not found", func() {
			_, err := r.GetService("B")
			Expect(err).To(HaveOccurred())
			Expect(tracker.IsNotFound(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("service B does not exist"))

			s, ok, err := r.GetOptionalService("B")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(s).To(BeNil())

			all, err := r.GetServices("B")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).NotTo(BeNil())
			Expect(all).To(BeEmpty())
		})

		It("opens each identity once however many lookups are made", func() {
			for i := 0; i < 10; i++ {
				_, _ = r.GetService("A")
				_, _ = r.GetServices("B")
			}
			Expect(dir.Opened("A")).To(Equal(1))
			Expect(dir.Opened("B")).To(Equal(1))
			Expect(r.Len()).To(Equal(2))
			Expect(r.Identities()).To(ConsistOf(tracker.Identity("A"), tracker.Identity("B")))
		})

		It("follows the directory after the first lookup", func() {
			_, err := r.GetService("B")
			Expect(err).To(HaveOccurred())

			reg := dir.Bind("B", "late", 0)
			Expect(r.GetService("B")).To(Equal("late"))

			reg.Unregister()
			_, ok, err := r.GetOptionalService("B")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("orders providers by ranking", func() {
			dir.Bind("A", 300, 10)
			dir.Bind("A", 200, 10)
			Expect(r.GetService("A")).To(Equal(300))
			Expect(r.GetServices("A")).To(Equal([]interface{}{300, 200, 100}))
		})

		It("closes every opened watcher exactly once", func() {
			_, _ = r.GetService("A")
			_, _ = r.GetService("B")

			Expect(r.Close()).To(Succeed())
			Expect(dir.Closed("A")).To(Equal(1))
			Expect(dir.Closed("B")).To(Equal(1))

			// a second close is harmless
			Expect(r.Close()).To(Succeed())
			Expect(dir.Closed("A")).To(Equal(1))

			_, err := r.GetService("A")
			Expect(tracker.IsNotFound(err)).To(BeTrue())
		})
	})

	Context("with concurrent first lookups", func() {
		var factory *countingFactory

		BeforeEach(func() {
			factory = &countingFactory{}
			r = tracker.NewRegister(dir, tracker.WithFactory(factory))
			for i := 0; i < 5; i++ {
				dir.Bind(fmt.Sprintf("svc-%d", i), i, 0)
			}
		})

		It("keeps one watcher per identity, opens and closes it once", func() {
			const goroutines = 300
			var wg sync.WaitGroup
			start := make(chan struct{})
			wg.Add(goroutines)
			for i := 0; i < goroutines; i++ {
				id := tracker.Identity(fmt.Sprintf("svc-%d", i%5))
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					<-start
					_, err := r.GetService(id)
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			close(start)
			wg.Wait()

			Expect(r.Len()).To(Equal(5))
			for i := 0; i < 5; i++ {
				Expect(dir.Opened(fmt.Sprintf("svc-%d", i))).To(Equal(1))
			}

			Expect(r.Close()).To(Succeed())

			var reachable int
			for _, w := range factory.created {
				if atomic.LoadInt32(&w.opens) == 0 {
					// a race loser is never opened nor closed
					Expect(atomic.LoadInt32(&w.closes)).To(BeZero())
					continue
				}
				reachable++
				Expect(atomic.LoadInt32(&w.closes)).To(Equal(int32(1)))
			}
			Expect(reachable).To(Equal(5))
			for i := 0; i < 5; i++ {
				Expect(dir.Closed(fmt.Sprintf("svc-%d", i))).To(Equal(1))
			}
		})
	})

	Context("when the directory fails", func() {
		It("propagates the failure and retries on the next lookup", func() {
			failing := &failingDirectory{}
			r = tracker.NewRegister(failing)

			_, err := r.GetService("A")
			Expect(err).To(MatchError("directory is down"))
			Expect(tracker.IsNotFound(err)).To(BeFalse())

			_, _, err = r.GetOptionalService("A")
			Expect(err).To(HaveOccurred())

			all, err := r.GetServices("A")
			Expect(err).To(HaveOccurred())
			Expect(all).To(BeEmpty())

			Expect(atomic.LoadInt32(&failing.calls)).To(Equal(int32(3)))
			Expect(r.Len()).To(Equal(1))
		})
	})

	Context("when preloading", func() {
		It("opens every identity before the first lookup", func() {
			r = tracker.NewRegister(dir, tracker.WithPreloadWorkers(2))
			ids := []tracker.Identity{"A", "B", "C", "D", "E"}
			Expect(r.Preload(ids...)).To(Succeed())
			Expect(r.Len()).To(Equal(len(ids)))
			for _, id := range ids {
				Expect(dir.Opened(id.String())).To(Equal(1))
			}
			Expect(r.Preload()).To(Succeed())
		})

		It("returns the directory failure", func() {
			r = tracker.NewRegister(&failingDirectory{})
			Expect(r.Preload("A", "B")).To(MatchError("directory is down"))
		})
	})
})
