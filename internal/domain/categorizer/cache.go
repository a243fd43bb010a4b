package categorizer

import (
	"sync"
)

// MemoryCache keeps memo to category mappings in memory. Keys come back in
// the order they were first set, so fuzzy lookups break ties the same way
// on every run.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]string
	order []string
}

// NewMemoryCache creates an empty memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]string)}
}

// Get returns the category stored for memo
func (c *MemoryCache) Get(memo string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	category, found := c.store[memo]
	return category, found
}

// Set stores category for memo, replacing any earlier category
func (c *MemoryCache) Set(memo string, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.store[memo]; !found {
		c.order = append(c.order, memo)
	}
	c.store[memo] = category
}

// Keys returns the stored memos in first-set order
func (c *MemoryCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.order...)
}

// Size returns the number of stored memos
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.order)
}
