package resolve

import "sync"

// Cache is an adapter's two-level store: input type name -> field -> value.
// It is only ever cleared explicitly.
type Cache interface {
	Get(typeName, field string) (any, bool)
	Set(typeName, field string, value any)
	Reset()
}

// MemoryCache is the in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	storage map[string]map[string]any
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{storage: make(map[string]map[string]any)}
}

// Get returns the cached value for field on typeName.
func (c *MemoryCache) Get(typeName, field string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.storage[typeName][field]
	return v, ok
}

// Set stores value for field on typeName.
func (c *MemoryCache) Set(typeName, field string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fields, ok := c.storage[typeName]
	if !ok {
		fields = make(map[string]any)
		c.storage[typeName] = fields
	}
	fields[field] = value
}

// Reset drops everything.
func (c *MemoryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage = make(map[string]map[string]any)
}
