// Package cache is a small TTL cache shared across a process run so
// sysfs scans and sg_ses invocations are not repeated when several
// pipeline stages touch the same hardware.
package cache

import (
	"sync"
	"time"
)

// TTL tiers
const (
	// Static data - never changes unless hardware is swapped
	TTLStatic = 24 * time.Hour

	// Slow-moving - topology scans, enclosure nicknames
	TTLSlow = 1 * time.Hour
)

// entry holds a cached value with expiration
type entry struct {
	value     any
	expiresAt time.Time
}

// Cache provides thread-safe TTL-based caching
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a new cache instance
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get retrieves a value from cache, returns nil if expired or not found
func (c *Cache) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}
	return e.value
}

// Set stores a value with the given TTL
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// SetStatic stores static data (very long TTL)
func (c *Cache) SetStatic(key string, value any) {
	c.Set(key, value, TTLStatic)
}

// SetSlow stores slow-moving data
func (c *Cache) SetSlow(key string, value any) {
	c.Set(key, value, TTLSlow)
}

// Delete removes an entry from cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries from cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Global cache instance
var global *Cache
var once sync.Once

// Global returns the global cache instance
func Global() *Cache {
	once.Do(func() {
		global = New()
	})
	return global
}
