package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/user/lens-lookup-service/internal/entity"
)

type cacheEntry struct {
	result    *entity.SearchResult
	expiresAt time.Time
}

// ResultCacheImpl is an in-process ResultCacheRepository. Entries expire after
// the TTL they were stored with; the LRU bound only matters under unusual key
// cardinality.
type ResultCacheImpl struct {
	entries *expirable.LRU[string, cacheEntry]
	now     func() time.Time
}

// NewResultCache creates a cache holding at most maxEntries results, none of
// them longer than maxTTL.
func NewResultCache(maxEntries int, maxTTL time.Duration) *ResultCacheImpl {
	return &ResultCacheImpl{
		entries: expirable.NewLRU[string, cacheEntry](maxEntries, nil, maxTTL),
		now:     time.Now,
	}
}

// Get returns a copy of the stored result if it has not expired.
func (c *ResultCacheImpl) Get(_ context.Context, key string) (*entity.SearchResult, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return entry.result.Clone(), true, nil
}

// Set stores a copy of result for ttl.
func (c *ResultCacheImpl) Set(_ context.Context, key string, result *entity.SearchResult, ttl time.Duration) error {
	c.entries.Add(key, cacheEntry{
		result:    result.Clone(),
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

// Len reports the number of stored entries, expired ones included until they are evicted.
func (c *ResultCacheImpl) Len() int {
	return c.entries.Len()
}
