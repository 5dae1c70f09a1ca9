package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache. Expired entries are dropped
// lazily on read and swept when the map is written, which bounds the
// key space to the set of tracked endpoints.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	now func() time.Time // injectable clock for tests
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached payload if present and unexpired
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(now) {
		c.dropIfExpired(key, now)
		return nil, false
	}

	return e.value, true
}

// dropIfExpired deletes key only if the entry under it is still
// expired. A writer may have replaced the entry between the read lock
// and this call, and a fresh entry must survive.
func (c *MemoryCache) dropIfExpired(key string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !e.expiresAt.After(now) {
		delete(c.entries, key)
	}
}

// Set stores the payload under key, overwriting any previous entry
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired(now)
	c.entries[key] = entry{
		value:     value,
		expiresAt: now.Add(ttl),
	}
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictExpired drops dead entries. Caller must hold c.mu.
func (c *MemoryCache) evictExpired(now time.Time) {
	for key, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, key)
		}
	}
}
