package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/lens-lookup-service/internal/entity"
	"github.com/user/lens-lookup-service/pkg/utils"
)

const resultKeyPrefix = "search:"

// ResultCacheImpl stores search results in Redis as JSON with a server-side expiry.
type ResultCacheImpl struct {
	client *redis.Client
}

// NewResultCache creates a new instance of ResultCacheImpl.
func NewResultCache(client *redis.Client) *ResultCacheImpl {
	return &ResultCacheImpl{client: client}
}

// generateKey hashes the cache key so arbitrary payload prefixes stay key-safe.
func (r *ResultCacheImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", resultKeyPrefix, utils.HashKey(key))
}

// Get returns the cached result for key. A missing key is a miss, not an error.
func (r *ResultCacheImpl) Get(ctx context.Context, key string) (*entity.SearchResult, bool, error) {
	raw, err := r.client.Get(ctx, r.generateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result entity.SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, true, nil
}

// Set stores result under key. SETEX keeps write and expiry atomic.
func (r *ResultCacheImpl) Set(ctx context.Context, key string, result *entity.SearchResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return r.client.SetEx(ctx, r.generateKey(key), raw, ttl).Err()
}
