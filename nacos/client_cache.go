package nacos

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// ClientCache identity keyed clients in front of a factory
// Concurrent requests for the same identity share one CreateClient call.
type ClientCache struct {
	factory ClientFactory
	group   singleflight.Group

	mu      sync.RWMutex
	clients map[string]Client
}

// NewClientCache creates a cache over factory
func NewClientCache(factory ClientFactory) *ClientCache {
	return &ClientCache{
		factory: factory,
		clients: make(map[string]Client),
	}
}

// CreateClient implements ClientFactory, returns the cached client when present
func (c *ClientCache) CreateClient(props Properties) (Client, error) {
	return c.Get(props)
}

// Get cached client of the parameter identity, creating it on first use
func (c *ClientCache) Get(props Properties) (Client, error) {
	id := props.Identify()

	c.mu.RLock()
	client, ok := c.clients[id]
	c.mu.RUnlock()
	if ok {
		return client, nil
	}

	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		c.mu.RLock()
		existing, ok := c.clients[id]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		created, err := c.factory.CreateClient(props)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.clients[id] = created
		c.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

// Lookup cached client of the parameter identity, never creates one
func (c *ClientCache) Lookup(props Properties) (Client, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, ok := c.clients[props.Identify()]
	return client, ok
}

// Len number of cached clients
func (c *ClientCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Drain empties the cache and returns what it held, keyed by identity
func (c *ClientCache) Drain() map[string]Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	drained := c.clients
	c.clients = make(map[string]Client)
	return drained
}

// Adopt takes over clients built elsewhere
// A client whose identity is already cached is closed instead.
func (c *ClientCache) Adopt(clients map[string]Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, client := range clients {
		if _, ok := c.clients[id]; ok {
			_ = client.Close()
			continue
		}
		c.clients[id] = client
	}
}

// Clear empties the cache and closes every client
func (c *ClientCache) Clear() {
	for _, client := range c.Drain() {
		_ = client.Close()
	}
}
