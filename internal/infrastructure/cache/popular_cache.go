package cache

import (
	"sync"
	"time"
)

// PopularQuery is one entry in the popular-searches snapshot.
type PopularQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// PopularSearchCache holds a single snapshot of the current popular queries.
// Unlike ResultCache it has exactly one slot, so there is nothing to evict;
// only the TTL decides whether the snapshot is still servable.
type PopularSearchCache struct {
	mu         sync.Mutex
	snapshot   []PopularQuery
	insertedAt time.Time
	lifetime   time.Duration
	ttl        time.Duration
	now        func() time.Time
}

// NewPopularSearchCache creates an empty single-slot cache.
func NewPopularSearchCache(ttl time.Duration) *PopularSearchCache {
	return &PopularSearchCache{ttl: ttl, now: time.Now}
}

// Get returns the snapshot, or false when empty or expired.
func (c *PopularSearchCache) Get() ([]PopularQuery, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return nil, false
	}
	if c.now().Sub(c.insertedAt) >= c.lifetime {
		c.snapshot = nil
		return nil, false
	}
	return c.snapshot, true
}

// Set replaces the snapshot and restarts its TTL. An optional ttl overrides
// the default lifetime for this snapshot only.
func (c *PopularSearchCache) Set(snapshot []PopularQuery, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.insertedAt = c.now()
	c.lifetime = c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		c.lifetime = ttl[0]
	}
}

// Clear empties the slot.
func (c *PopularSearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
