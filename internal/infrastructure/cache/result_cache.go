// Package cache provides bounded in-memory caches for query results.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"talkboard-backend/internal/observability"
)

// CacheKey identifies one cached result set. Two lookups that would hit the
// store with the same shape produce the same key; any difference in filters
// or sort order produces a different one.
type CacheKey struct {
	Type    string                 `json:"type"`
	Query   string                 `json:"query"`
	Filters map[string]interface{} `json:"filters,omitempty"`
	Sort    string                 `json:"sort,omitempty"`
}

// String renders the key as a hex digest of its canonical JSON form. Filter
// maps are serialized with sorted keys so equal keys always hash equal.
func (k CacheKey) String() string {
	canonical := struct {
		Type    string   `json:"type"`
		Query   string   `json:"query"`
		Filters []string `json:"filters,omitempty"`
		Sort    string   `json:"sort,omitempty"`
	}{Type: k.Type, Query: k.Query, Sort: k.Sort}

	if len(k.Filters) > 0 {
		names := make([]string, 0, len(k.Filters))
		for name := range k.Filters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value, _ := json.Marshal(k.Filters[name])
			canonical.Filters = append(canonical.Filters, name+"="+string(value))
		}
	}

	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Stats is a point-in-time snapshot of cache state and counters.
type Stats struct {
	Size        int   `json:"size"`
	MaxSize     int   `json:"maxSize"`
	MemoryUsage int64 `json:"memoryUsage"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
}

type entry[V any] struct {
	key        string
	entryType  string
	value      V
	size       int64
	expiry     time.Time
	lruElement *list.Element
}

// ResultCache is a thread-safe TTL cache with LRU eviction, bounded by entry
// count. Expired entries are dropped lazily on read.
type ResultCache[V any] struct {
	mu      sync.Mutex
	name    string
	entries map[string]*entry[V]
	lruList *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	memoryUsage int64
	hits        int64
	misses      int64
	evictions   int64

	logger *zap.Logger
}

// NewResultCache creates a cache holding at most maxSize entries, each valid
// for ttl after insertion. The name labels metrics and log lines.
func NewResultCache[V any](name string, maxSize int, ttl time.Duration, logger *zap.Logger) *ResultCache[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCache[V]{
		name:    name,
		entries: make(map[string]*entry[V]),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.Named("cache").With(zap.String("cache", name)),
	}
}

// Get returns the cached value for key, or the zero value and false when the
// key is absent or its entry has expired.
func (c *ResultCache[V]) Get(key CacheKey) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		c.misses++
		observability.CacheRequests.WithLabelValues(c.name, "miss").Inc()
		return zero, false
	}

	if c.now().After(e.expiry) {
		c.remove(e)
		c.misses++
		observability.CacheRequests.WithLabelValues(c.name, "miss").Inc()
		return zero, false
	}

	c.lruList.MoveToFront(e.lruElement)
	c.hits++
	observability.CacheRequests.WithLabelValues(c.name, "hit").Inc()
	return e.value, true
}

// Set stores value under key, replacing any existing entry. When the cache is
// full the least recently used entry is evicted first. An optional ttl
// overrides the cache-wide lifetime for this entry only.
func (c *ResultCache[V]) Set(key CacheKey, value V, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lifetime := c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		lifetime = ttl[0]
	}

	hashed := key.String()
	if existing, ok := c.entries[hashed]; ok {
		c.remove(existing)
	}

	for len(c.entries) >= c.maxSize && c.lruList.Len() > 0 {
		oldest := c.lruList.Back()
		c.remove(oldest.Value.(*entry[V]))
		c.evictions++
		observability.CacheEvictions.WithLabelValues(c.name).Inc()
	}

	e := &entry[V]{
		key:       hashed,
		entryType: key.Type,
		value:     value,
		size:      approximateSize(value),
		expiry:    c.now().Add(lifetime),
	}
	e.lruElement = c.lruList.PushFront(e)
	c.entries[hashed] = e
	c.memoryUsage += e.size
}

// Clear removes every entry.
func (c *ResultCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry[V])
	c.lruList.Init()
	c.memoryUsage = 0
	c.logger.Debug("cache cleared")
}

// ClearType removes every entry whose key was built for entryType. Used when
// a write invalidates all cached results for one entity type.
func (c *ResultCache[V]) ClearType(entryType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, e := range c.entries {
		if e.entryType == entryType {
			c.remove(e)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("cache entries invalidated",
			zap.String("type", entryType),
			zap.Int("removed", removed),
		)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		MemoryUsage: c.memoryUsage,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
	}
}

// remove must be called with the mutex held.
func (c *ResultCache[V]) remove(e *entry[V]) {
	delete(c.entries, e.key)
	c.lruList.Remove(e.lruElement)
	c.memoryUsage -= e.size
}

// approximateSize estimates memory held by a cached value via its JSON form.
// Estimation only feeds the stats snapshot, never an eviction decision.
func approximateSize(value interface{}) int64 {
	data, err := json.Marshal(value)
	if err != nil {
		return 0
	}
	return int64(len(data))
}
