// Package debounce provides a debouncer func.
package debounce

import (
	"time"

	"k8s.io/klog"
)

// Request ...
type Request interface {
	Merge(Request) Request
}

// Debounce ...
type Debounce struct {
	ch          chan Request
	done        chan struct{}
	waitTime    time.Duration     // The duration it should wait when there is no request has been put.
	maxWaitTime time.Duration     // The duration limit if there are a lot of requests is be put into continually.
	pushFn      func(req Request) // Debounced func
}

// New ...
func New(waitTime, maxWaitTime time.Duration, pushFn func(req Request)) *Debounce {
	d := &Debounce{
		ch:          make(chan Request),
		done:        make(chan struct{}),
		waitTime:    waitTime,
		maxWaitTime: maxWaitTime,
		pushFn:      pushFn,
	}

	go d.start()
	return d
}

func (d *Debounce) start() {
	var timeChan <-chan time.Time
	var startTime time.Time
	var lastUpdateTime time.Time
	debounceEvents := 0
	var req Request
	free := true
	freeCh := make(chan struct{}, 1)

	push := func(req Request) {
		d.pushFn(req)
		freeCh <- struct{}{}
	}

	pushWorker := func() {
		lastUpdateDuration := time.Since(lastUpdateTime)
		if lastUpdateDuration >= d.waitTime || time.Since(startTime) >= d.maxWaitTime {
			if req != nil {
				free = false
				go push(req)
				req = nil
				debounceEvents = 0
			}
		} else {
			timeChan = time.After(d.waitTime - lastUpdateDuration)
		}
	}

	for {
		select {
		case <-freeCh:
			free = true
			pushWorker()
		case r := <-d.ch:
			lastUpdateTime = time.Now()
			if debounceEvents == 0 {
				timeChan = time.After(d.waitTime)
				startTime = lastUpdateTime
			}
			debounceEvents++

			if req == nil {
				req = r
				continue
			}
			req = req.Merge(r)
		case <-timeChan:
			klog.V(5).Infof("Debounced %d requests, free: %v", debounceEvents, free)
			if free {
				pushWorker()
			}
		case <-d.done:
			return
		}
	}
}

// Put ...
func (d *Debounce) Put(req Request) {
	select {
	case d.ch <- req:
	case <-d.done:
	}
}

// Close stops the debouncer, pending requests are dropped.
func (d *Debounce) Close() {
	close(d.done)
}
