package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func TestRedisClientHealth(t *testing.T) {
	_, rc := setupRedis(t)
	require.NoError(t, rc.Connect(context.Background()))
	assert.NoError(t, rc.HealthCheck(context.Background()))
}

func TestRedisCacheGetSet(t *testing.T) {
	ctx := context.Background()
	mr, rc := setupRedis(t)
	c := NewRedisCache(rc)

	var got []string
	found, err := c.Get(ctx, "q:categories", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "q:categories", []string{"fiqih", "tasawuf"}, time.Minute))
	found, err = c.Get(ctx, "q:categories", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"fiqih", "tasawuf"}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, "q:categories", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheBrokenEntry(t *testing.T) {
	ctx := context.Background()
	mr, rc := setupRedis(t)
	require.NoError(t, mr.Set("q:books", "not json"))

	var got []string
	found, err := NewRedisCache(rc).Get(ctx, "q:books", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisCacheDeletePattern(t *testing.T) {
	ctx := context.Background()
	mr, rc := setupRedis(t)
	c := NewRedisCache(rc)

	for i, k := range []string{"q:search:1", "q:search:2", "q:search", "q:books:1"} {
		require.NoError(t, c.Set(ctx, k, i, 0))
	}

	require.NoError(t, c.DeletePattern(ctx, "q:search:*"))
	require.NoError(t, c.Delete(ctx, "q:search"))

	assert.False(t, mr.Exists("q:search:1"))
	assert.False(t, mr.Exists("q:search:2"))
	assert.False(t, mr.Exists("q:search"))
	assert.True(t, mr.Exists("q:books:1"))
}
