package store

import (
	"sync"
	"sync/atomic"
)

// recordCache is a FIFO cache of encoded game bodies keyed by game ID.
// Bodies are decoded on every hit so callers never share a record.
type recordCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	order   []string // insertion order for eviction
	max     int
	hits    uint64
	misses  uint64
}

func newRecordCache(max int) *recordCache {
	if max < 0 {
		max = 0
	}
	return &recordCache{
		entries: make(map[string][]byte, max),
		order:   make([]string, 0, max),
		max:     max,
	}
}

func (c *recordCache) get(id string) ([]byte, bool) {
	c.mu.RLock()
	body, ok := c.entries[id]
	c.mu.RUnlock()

	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return body, ok
}

func (c *recordCache) put(id string, body []byte) {
	if c.max <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; exists {
		c.entries[id] = body
		return
	}

	for len(c.entries) >= c.max && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[id] = body
	c.order = append(c.order, id)
}

// invalidate drops id and its slot in the eviction order.
func (c *recordCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return
	}
	delete(c.entries, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *recordCache) stats() (hits, misses uint64, size int) {
	hits = atomic.LoadUint64(&c.hits)
	misses = atomic.LoadUint64(&c.misses)
	c.mu.RLock()
	size = len(c.entries)
	c.mu.RUnlock()
	return
}
