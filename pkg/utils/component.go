package utils

import (
	"errors"
	"sync"
)

// Runnable allows a component to be started.
type Runnable interface {
	Start(<-chan struct{}) error
}

// RunnableFunc adapts a function to a Runnable.
type RunnableFunc func(<-chan struct{}) error

// Start ...
func (f RunnableFunc) Start(stopCh <-chan struct{}) error {
	return f(stopCh)
}

// Components ...
type Components struct {
	mu         sync.Mutex
	started    bool
	components []Runnable
}

// Add a new Runnable to Components. It panics if the Components is already started.
func (c *Components) Add(r Runnable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		panic("Components.Add: Components is already started")
	}
	c.components = append(c.components, r)
}

// Start runs every component until stopCh is closed or one of them fails.
// After stopCh is closed it waits for the components to return.
func (c *Components) Start(stopCh <-chan struct{}) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return errors.New("components: already started")
	}
	c.started = true
	components := c.components
	c.mu.Unlock()

	var wg sync.WaitGroup
	errChan := make(chan error, len(components))
	for _, r := range components {
		ctrl := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctrl.Start(stopCh); err != nil {
				errChan <- err
			}
		}()
	}

	select {
	case <-stopCh:
		// We are done once every component has returned
		wg.Wait()
		return nil
	case err := <-errChan:
		// Error starting a component
		return err
	}
}
