package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cachedPage struct {
	Addresses []string `json:"addresses"`
	Total     int64    `json:"total"`
}

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheWithClient(client, 30*time.Second, zap.NewNop()), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	in := cachedPage{Addresses: []string{"0xabc", "0xdef"}, Total: 2}
	require.NoError(t, c.Set(ctx, "leaderboard:1", in))

	var out cachedPage
	require.NoError(t, c.Get(ctx, "leaderboard:1", &out))
	assert.Equal(t, in, out)
	assert.Equal(t, 30*time.Second, mr.TTL("leaderboard:1"))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupTestCache(t)

	var out cachedPage
	err := c.Get(context.Background(), "missing", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "short", cachedPage{Total: 1}, time.Second))
	mr.FastForward(2 * time.Second)

	var out cachedPage
	assert.ErrorIs(t, c.Get(ctx, "short", &out), ErrCacheMiss)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "leaderboard:a", cachedPage{}))
	require.NoError(t, c.Set(ctx, "leaderboard:b", cachedPage{}))
	require.NoError(t, c.Set(ctx, "wallet:0xabc", cachedPage{}))

	require.NoError(t, c.DeletePattern(ctx, "leaderboard:*"))

	assert.False(t, mr.Exists("leaderboard:a"))
	assert.False(t, mr.Exists("leaderboard:b"))
	assert.True(t, mr.Exists("wallet:0xabc"))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	c, mr := setupTestCache(t)

	assert.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}
