package tracker_test

import (
	"errors"
	"sync"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/symcn/tracker/pkg/directory"
	dirmock "github.com/symcn/tracker/pkg/directory/mock"
	"github.com/symcn/tracker/pkg/tracker"
	"github.com/symcn/tracker/pkg/tracker/mock"
)

var _ = Describe("Watcher", func() {
	var (
		mockCtrl   *gomock.Controller
		mockDir    *dirmock.MockDirectory
		mockHandle *dirmock.MockHandle
		w          tracker.Watcher
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockDir = dirmock.NewMockDirectory(mockCtrl)
		mockHandle = dirmock.NewMockHandle(mockCtrl)
		w = tracker.NewWatcher(mockDir, "com.foo.Greeter")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("doesn't touch the directory until it is opened", func() {
		Expect(w.Identity()).To(Equal(tracker.Identity("com.foo.Greeter")))
		s, ok := w.Service()
		Expect(ok).To(BeFalse())
		Expect(s).To(BeNil())
		Expect(w.Services()).To(BeEmpty())
		Expect(w.Services()).NotTo(BeNil())
	})

	It("opens exactly once under concurrent callers", func() {
		mockDir.EXPECT().Open("com.foo.Greeter").Return(mockHandle, nil).Times(1)
		mockHandle.EXPECT().Service().Return("provider", true).AnyTimes()

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(w.OpenOnlyFirstTime()).To(Succeed())
			}()
		}
		wg.Wait()

		Expect(w.OpenOnlyFirstTime()).To(Succeed())
		s, ok := w.Service()
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal("provider"))
	})

	It("never returns nil providers", func() {
		mockDir.EXPECT().Open(gomock.Any()).Return(mockHandle, nil)
		mockHandle.EXPECT().Services().Return(nil)

		Expect(w.OpenOnlyFirstTime()).To(Succeed())
		Expect(w.Services()).To(Equal([]interface{}{}))
	})

	It("stays unopened when the directory fails", func() {
		failure := errors.New("connection refused")
		gomock.InOrder(
			mockDir.EXPECT().Open("com.foo.Greeter").Return(nil, failure),
			mockDir.EXPECT().Open("com.foo.Greeter").Return(mockHandle, nil),
		)
		mockHandle.EXPECT().Close().Return(nil).Times(1)

		Expect(w.OpenOnlyFirstTime()).To(Equal(failure))
		_, ok := w.Service()
		Expect(ok).To(BeFalse())

		Expect(w.OpenOnlyFirstTime()).To(Succeed())
		Expect(w.Close()).To(Succeed())
	})

	It("closes the handle once", func() {
		mockDir.EXPECT().Open(gomock.Any()).Return(mockHandle, nil)
		mockHandle.EXPECT().Close().Return(nil).Times(1)

		Expect(w.OpenOnlyFirstTime()).To(Succeed())
		Expect(w.Close()).To(Succeed())
		Expect(w.Close()).To(Succeed())

		_, ok := w.Service()
		Expect(ok).To(BeFalse())
		Expect(w.Services()).To(BeEmpty())
	})

	It("treats closing an unopened watcher as a no-op", func() {
		Expect(w.Close()).To(Succeed())
		// a closed watcher is never opened again
		Expect(w.OpenOnlyFirstTime()).To(Succeed())
		_, ok := w.Service()
		Expect(ok).To(BeFalse())
	})

	It("reports the close failure of the handle", func() {
		mockDir.EXPECT().Open(gomock.Any()).Return(mockHandle, nil)
		mockHandle.EXPECT().Close().Return(errors.New("session expired"))

		Expect(w.OpenOnlyFirstTime()).To(Succeed())
		Expect(w.Close()).To(MatchError("session expired"))
	})
})

var _ = Describe("Register with an injected factory", func() {
	var (
		mockCtrl    *gomock.Controller
		mockDir     *dirmock.MockDirectory
		mockWatcher *mock.MockWatcher
		r           *tracker.Register
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockDir = dirmock.NewMockDirectory(mockCtrl)
		mockWatcher = mock.NewMockWatcher(mockCtrl)
		r = tracker.NewRegister(mockDir, tracker.WithFactory(tracker.FactoryFunc(
			func(dir directory.Directory, id tracker.Identity) tracker.Watcher {
				return mockWatcher
			})))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("asks the watcher of record for every lookup", func() {
		mockWatcher.EXPECT().OpenOnlyFirstTime().Return(nil).Times(3)
		mockWatcher.EXPECT().Service().Return(nil, false).Times(2)
		mockWatcher.EXPECT().Identity().Return(tracker.Identity("A"))
		mockWatcher.EXPECT().Services().Return([]interface{}{1, 2})

		_, err := r.GetService("A")
		Expect(err).To(MatchError(&tracker.NotFoundError{Name: "A"}))

		_, ok, err := r.GetOptionalService("A")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		Expect(r.GetServices("A")).To(Equal([]interface{}{1, 2}))
	})

	It("closes the watcher of record on teardown", func() {
		mockWatcher.EXPECT().OpenOnlyFirstTime().Return(nil)
		mockWatcher.EXPECT().Service().Return("a", true)
		mockWatcher.EXPECT().Close().Return(nil).Times(1)

		Expect(r.GetService("A")).To(Equal("a"))
		Expect(r.Close()).To(Succeed())
	})

	It("keeps closing after a failure", func() {
		other := mock.NewMockWatcher(mockCtrl)
		watchers := map[tracker.Identity]tracker.Watcher{"A": mockWatcher, "B": other}
		r = tracker.NewRegister(mockDir, tracker.WithFactory(tracker.FactoryFunc(
			func(dir directory.Directory, id tracker.Identity) tracker.Watcher {
				return watchers[id]
			})))

		for _, m := range []*mock.MockWatcher{mockWatcher, other} {
			m.EXPECT().OpenOnlyFirstTime().Return(nil)
			m.EXPECT().Services().Return([]interface{}{})
		}
		mockWatcher.EXPECT().Close().Return(errors.New("boom"))
		mockWatcher.EXPECT().Identity().Return(tracker.Identity("A")).AnyTimes()
		other.EXPECT().Close().Return(nil)

		_, _ = r.GetServices("A")
		_, _ = r.GetServices("B")
		Expect(r.Close()).To(MatchError("boom"))
	})
})
