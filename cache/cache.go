package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache is a simple in-memory cache for compiled selector expressions
// (xpath expressions, css selectors). Compiling is pure and deterministic,
// so entries never expire; the cache only caps total size.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]any
	maxEntries int
}

// New creates a new Cache with the given maximum number of entries.
func New(maxEntries int) *Cache {
	return &Cache{
		store:      make(map[string]any),
		maxEntries: maxEntries,
	}
}

// Key generates a cache key from the selection method and expression.
func Key(method, expression string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte("|"))
	h.Write([]byte(expression))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached compiled expression.
// Returns the value and whether it was a cache hit.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// Set stores a compiled expression in the cache. If the cache is at
// capacity, a random entry is evicted to make room.
func (c *Cache) Set(key string, compiled any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = compiled
}

// Len reports the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
