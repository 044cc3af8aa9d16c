package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type queryKey string

type pathEntry struct {
	From  string
	To    string
	Steps []string
}

func TestMemory_SetAndGet(t *testing.T) {
	cache := NewMemory[queryKey, pathEntry]("paths", DefaultExpiration)
	ctx := context.Background()
	entry := pathEntry{From: "chromosome", To: "clone", Steps: []string{"chromosome", "contig", "clone"}}
	cache.Set(ctx, "chromosome|clone", entry, 0)

	got, ok := cache.Get(ctx, "chromosome|clone")
	require.True(t, ok)
	require.Equal(t, entry, got)

	got, ok = cache.Get(ctx, "clone|chromosome")
	require.False(t, ok)
	require.Zero(t, got)

	require.Equal(t, Stats{Hits: 1, Misses: 1, Items: 1}, cache.Stats())
}

func TestMemory_EmptySliceIsAHit(t *testing.T) {
	cache := NewMemory[queryKey, []string]("paths", DefaultExpiration)
	ctx := context.Background()
	cache.Set(ctx, "est|chromosome", []string{}, 0)

	got, ok := cache.Get(ctx, "est|chromosome")
	require.True(t, ok)
	require.Empty(t, got)
}

func TestMemory_WrongTypeIsAMiss(t *testing.T) {
	cache := NewMemory[queryKey, string]("paths", DefaultExpiration)
	cache.items.Set("paths:chromosome|clone", 123, 0)

	got, ok := cache.Get(context.Background(), "chromosome|clone")
	require.False(t, ok)
	require.Empty(t, got)
	require.Equal(t, uint64(1), cache.Stats().Misses)
}

func TestMemory_KeysAreNamespaced(t *testing.T) {
	cache := NewMemory[queryKey, string]("paths", DefaultExpiration)
	cache.Set(context.Background(), "contig", "value", 0)

	_, found := cache.items.Get("contig")
	require.False(t, found)
	raw, found := cache.items.Get("paths:contig")
	require.True(t, found)
	require.Equal(t, "value", raw)
}

func TestMemory_ExpiredValueIsMissing(t *testing.T) {
	cache := NewMemory[queryKey, string]("paths", DefaultExpiration)
	ctx := context.Background()
	cache.Set(ctx, "a|b", "ab", time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, "a|b")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMemory_DefaultTTL(t *testing.T) {
	cache := NewMemory[queryKey, string]("paths", time.Hour)
	cache.Set(context.Background(), "a|b", "ab", 0)

	_, expiry, found := cache.items.GetWithExpiration("paths:a|b")
	require.True(t, found)
	require.True(t, expiry.After(time.Now().Add(30*time.Minute)))
}

func TestMemory_Flush(t *testing.T) {
	cache := NewMemory[queryKey, string]("paths", DefaultExpiration)
	ctx := context.Background()
	cache.Set(ctx, "a|b", "ab", 0)
	cache.Set(ctx, "b|c", "bc", 0)
	require.Equal(t, 2, cache.Len())

	require.NoError(t, cache.Flush(ctx))

	require.Zero(t, cache.Len())
	_, ok := cache.Get(ctx, "a|b")
	require.False(t, ok)
}
