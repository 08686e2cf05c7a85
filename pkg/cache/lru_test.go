package cache_test

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperast-go/hyperast/pkg/cache"
	"github.com/hyperast-go/hyperast/pkg/gitobj"
)

func hashOf(seed string) gitobj.Hash {
	return sha1.Sum([]byte(seed))
}

func TestLRUBlobCache_PutGetRoundTrips(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUBlobCache(0)
	h := hashOf("a")

	require.NoError(t, c.Put(h, []byte("package main\n\nfunc main() {}\n")))

	got := c.Get(h)
	assert.Equal(t, []byte("package main\n\nfunc main() {}\n"), got)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
}

func TestLRUBlobCache_MissIncrementsMisses(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUBlobCache(0)

	assert.Nil(t, c.Get(hashOf("missing")))
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestLRUBlobCache_EvictsUnderPressure(t *testing.T) {
	t.Parallel()

	// A tiny cache forces eviction well before all five entries fit.
	c := cache.NewLRUBlobCache(64)

	for _, seed := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, c.Put(hashOf(seed), []byte(seed+seed+seed+seed+seed+seed+seed+seed)))
	}

	stats := c.Stats()
	assert.LessOrEqual(t, stats.CurrentSize, int64(64))
	assert.Less(t, stats.Entries, 5)
}

func TestLRUBlobCache_GetMulti(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUBlobCache(0)

	h1, h2 := hashOf("one"), hashOf("two")
	require.NoError(t, c.Put(h1, []byte("one-content")))

	found, missing := c.GetMulti([]gitobj.Hash{h1, h2})
	assert.Equal(t, []byte("one-content"), found[h1])
	assert.Equal(t, []gitobj.Hash{h2}, missing)
}

func TestLRUBlobCache_PutMulti(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUBlobCache(0)
	h1, h2 := hashOf("one"), hashOf("two")

	require.NoError(t, c.PutMulti(map[gitobj.Hash][]byte{
		h1: []byte("one-content"),
		h2: []byte("two-content"),
	}))

	assert.Equal(t, []byte("one-content"), c.Get(h1))
	assert.Equal(t, []byte("two-content"), c.Get(h2))
}

func TestLRUBlobCache_Clear(t *testing.T) {
	t.Parallel()

	c := cache.NewLRUBlobCache(0)
	require.NoError(t, c.Put(hashOf("a"), []byte("content")))

	c.Clear()

	assert.Equal(t, 0, c.Stats().Entries)
	assert.Nil(t, c.Get(hashOf("a")))
}
