// Package cache is a small in-memory TTL cache backing the read-heavy API
// endpoints. Entries are evicted lazily on lookup; with a handful of fixed
// keys and short TTLs there is nothing for a sweeper goroutine to do.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache maps string keys to values with a per-entry TTL. Safe for
// concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
}

// New creates an empty cache
func New() *Cache {
	return &Cache{items: make(map[string]entry)}
}

// Get returns the value stored at key. A missing or expired entry is a
// miss; expired entries are dropped on the way out.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.data, true
}

// Set stores a value at key, replacing any previous entry
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}
