package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lens-lookup-service/internal/entity"
)

// newTestClient connects to REDIS_ADDR or skips the test.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestResultCacheRoundTrip(t *testing.T) {
	client := newTestClient(t)
	cache := NewResultCache(client)
	ctx := context.Background()
	key := "data:image/png;base64," + uuid.NewString()

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &entity.SearchResult{ResultURL: "https://www.google.com/search?tbs=sbi", ExtractedLabels: []string{"Artist - Album"}}
	require.NoError(t, cache.Set(ctx, key, want, time.Minute))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, cache.generateKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	t.Cleanup(func() { client.Del(context.Background(), cache.generateKey(key)) })
}

func TestGenerateKeyIsStable(t *testing.T) {
	cache := NewResultCache(nil)
	a := cache.generateKey("data:image/png;base64,AAAA")
	assert.Equal(t, a, cache.generateKey("data:image/png;base64,AAAA"))
	assert.NotEqual(t, a, cache.generateKey("data:image/png;base64,AAAB"))
	assert.Len(t, a, len(resultKeyPrefix)+64)
}
