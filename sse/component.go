package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/bazarlabs/livefeed/component"
)

// Component wraps a Hub as a lifecycle-managed component for the registry.
type Component struct {
	hub *Hub
	wg  sync.WaitGroup
	mu  sync.Mutex
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a feed component with a fresh Hub.
func NewComponent() *Component {
	return &Component{hub: NewHub()}
}

// Hub returns the underlying Hub for broadcasting and subscriber serving.
func (c *Component) Hub() *Hub { return c.hub }

func (c *Component) Name() string { return "feed-hub" }

// Start launches the Hub's event loop in a background goroutine.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop shuts the Hub down and waits for Run to return.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hub.Stop()
	c.wg.Wait()
	return nil
}

func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d subscribers connected", c.hub.SubscriberCount()),
	}
}
