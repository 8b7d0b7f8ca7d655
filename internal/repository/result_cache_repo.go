package repository

import (
	"context"
	"time"

	"github.com/user/lens-lookup-service/internal/entity"
)

// ResultCacheRepository stores search results for a bounded time.
type ResultCacheRepository interface {
	// Get returns the cached result for key. Expired entries are reported as missing.
	Get(ctx context.Context, key string) (*entity.SearchResult, bool, error)
	// Set stores result under key for ttl.
	Set(ctx context.Context, key string, result *entity.SearchResult, ttl time.Duration) error
}
