package offline

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkPolicy(t *testing.T, store PromptStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPromptPolicy(store)
	p.now = func() time.Time { return now }

	show, err := p.ShouldPrompt(ctx, "device-1")
	require.NoError(t, err)
	assert.True(t, show)

	require.NoError(t, p.Dismiss(ctx, "device-1"))

	now = now.Add(6 * 24 * time.Hour)
	show, err = p.ShouldPrompt(ctx, "device-1")
	require.NoError(t, err)
	assert.False(t, show)

	show, err = p.ShouldPrompt(ctx, "device-2")
	require.NoError(t, err)
	assert.True(t, show)

	now = now.Add(24 * time.Hour)
	show, err = p.ShouldPrompt(ctx, "device-1")
	require.NoError(t, err)
	assert.True(t, show)
}

func TestPromptPolicyMemory(t *testing.T) {
	checkPolicy(t, NewMemoryPromptStore())
}

func TestPromptPolicyRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisPromptStore(rdb)
	checkPolicy(t, store)

	ttl := mr.TTL(promptKeyPrefix + "device-1")
	assert.Equal(t, PromptWindow, ttl)
}
