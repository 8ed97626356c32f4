package utils

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"k8s.io/klog"
)

// WorkerPool workerPool interface
type WorkerPool interface {
	// Schedule runs the task on an idle worker, spawns a new one while the pool
	// is not full, otherwise it blocks until a worker is free.
	Schedule(task func())

	// ScheduleAuto is like Schedule but never blocks: it falls back to a new
	// goroutine when every worker is busy.
	ScheduleAuto(task func())

	// Stop lets the workers exit once they are idle.
	Stop()
}

type workerPool struct {
	work chan func()
	sem  chan struct{}
	stop chan struct{}
}

// NewWorkerPool build workpool object
func NewWorkerPool(size int) WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &workerPool{
		work: make(chan func()),
		sem:  make(chan struct{}, size),
		stop: make(chan struct{}),
	}
}

func (p *workerPool) Schedule(task func()) {
	select {
	case p.work <- task:
	case p.sem <- struct{}{}:
		go p.spawnWorker(task)
	}
}

func (p *workerPool) ScheduleAuto(task func()) {
	select {
	case p.work <- task:
		return
	default:
	}

	select {
	case p.work <- task:
	case p.sem <- struct{}{}:
		go p.spawnWorker(task)
	default:
		klog.V(4).Infof("[workerpool] every worker is busy, run the task in a new goroutine")
		GoWithRecover(task, nil)
	}
}

func (p *workerPool) Stop() {
	close(p.stop)
}

func (p *workerPool) spawnWorker(task func()) {
	defer func() {
		if r := recover(); r != nil {
			klog.Warningf("workerpool panic %v\n%s", r, string(debug.Stack()))
		}
		<-p.sem
	}()

	for {
		task()
		select {
		case task = <-p.work:
		case <-p.stop:
			return
		}
	}
}

// GoWithRecover go task with goroutine and recover
func GoWithRecover(handler func(), recoverHandler func(r interface{})) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "%s goroutine panic:%v\n%s\n", time.Now().Format("2006-01-02 15:04:05"), r, string(debug.Stack()))

				if recoverHandler != nil {
					go func() {
						defer func() {
							if p := recover(); p != nil {
								fmt.Fprintf(os.Stderr, "recover goroutine panic:%v\n%s\n", p, string(debug.Stack()))
							}
						}()

						recoverHandler(r)
					}()
				}
			}
		}()

		handler()
	}()
}
