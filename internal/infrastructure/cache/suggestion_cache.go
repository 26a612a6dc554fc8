package cache

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Suggestion is a single autocomplete candidate with its popularity score.
type Suggestion struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SuggestionCache caches autocomplete suggestion lists keyed by the typed
// prefix and the entity type being suggested. Prefixes are normalized to
// lower case so "Go" and "go" share an entry.
type SuggestionCache struct {
	inner *ResultCache[[]Suggestion]
}

// NewSuggestionCache creates a suggestion cache bounded to maxSize prefixes.
func NewSuggestionCache(maxSize int, ttl time.Duration, logger *zap.Logger) *SuggestionCache {
	return &SuggestionCache{
		inner: NewResultCache[[]Suggestion]("suggestions", maxSize, ttl, logger),
	}
}

func suggestionKey(prefix, entityType string) CacheKey {
	return CacheKey{
		Type:  entityType,
		Query: strings.ToLower(strings.TrimSpace(prefix)),
	}
}

// Get returns cached suggestions for the prefix, or false on miss.
func (c *SuggestionCache) Get(prefix, entityType string) ([]Suggestion, bool) {
	return c.inner.Get(suggestionKey(prefix, entityType))
}

// Set caches suggestions for the prefix. An optional ttl overrides the
// cache-wide lifetime for this prefix only.
func (c *SuggestionCache) Set(prefix, entityType string, suggestions []Suggestion, ttl ...time.Duration) {
	c.inner.Set(suggestionKey(prefix, entityType), suggestions, ttl...)
}

// ClearType drops every cached prefix for one entity type.
func (c *SuggestionCache) ClearType(entityType string) {
	c.inner.ClearType(entityType)
}

// Clear drops everything.
func (c *SuggestionCache) Clear() {
	c.inner.Clear()
}

// Stats reports the underlying cache counters.
func (c *SuggestionCache) Stats() Stats {
	return c.inner.Stats()
}
