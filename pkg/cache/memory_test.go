package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shelf struct {
	Name  string   `json:"name"`
	Books []string `json:"books"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()

	var got shelf
	found, err := m.Get(ctx, "q:books", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "q:books", shelf{Name: "tasawuf", Books: []string{"Ihya"}}, 0))
	found, err = m.Get(ctx, "q:books", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, shelf{Name: "tasawuf", Books: []string{"Ihya"}}, got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCache()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", 1, time.Minute))

	var v int
	found, _ := m.Get(ctx, "k", &v)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	found, _ = m.Get(ctx, "k", &v)
	assert.False(t, found)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryCacheDeletePattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()
	for _, k := range []string{"q:books", "q:books:a1", "q:books:b2", "q:bookmarks:c3"} {
		require.NoError(t, m.Set(ctx, k, true, 0))
	}

	require.NoError(t, m.DeletePattern(ctx, "q:books:*"))
	assert.Equal(t, 2, m.Len())

	var v bool
	found, _ := m.Get(ctx, "q:bookmarks:c3", &v)
	assert.True(t, found)

	assert.Error(t, m.DeletePattern(ctx, "q:[books"))
}
