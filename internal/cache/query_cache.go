// Package cache provides the bounded query cache for retrieved case lists.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/sanketexe/legal-chatbot/internal/domain"
)

const defaultCapacity = 100

// QueryCache is a bounded LRU over (normalized query, topK) keys. Entries
// live until evicted or the process restarts; index updates do not
// invalidate them (stale reads are accepted).
type QueryCache struct {
	mu       sync.Mutex
	entries  map[string][]domain.RelevantCase
	order    []string
	capacity int
}

// NewQueryCache creates a cache with the given capacity.
func NewQueryCache(capacity int) *QueryCache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &QueryCache{
		entries:  make(map[string][]domain.RelevantCase),
		order:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

func cacheKey(query string, topK int) string {
	data := []byte(query)
	data = append(data, byte(topK>>8), byte(topK))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached case list for the key, refreshing its recency.
func (c *QueryCache) Get(query string, topK int) ([]domain.RelevantCase, bool) {
	key := cacheKey(query, topK)

	c.mu.Lock()
	defer c.mu.Unlock()

	cases, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	c.moveToEnd(key)
	return cases, true
}

// Put inserts a case list, evicting the oldest entry at capacity. The
// evict+insert sequence is serialized; concurrent misses on the same key
// resolve to one winning insert.
func (c *QueryCache) Put(query string, topK int, cases []domain.RelevantCase) {
	key := cacheKey(query, topK)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = cases
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	c.entries[key] = cases
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}
