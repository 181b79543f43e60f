package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotCacheLimits(t *testing.T) {
	hc := NewHotCache(4)
	full := []Suggestion{{Word: "alice"}, {Word: "alina"}}
	hc.Put("user", "al", 2, full)

	got, ok := hc.Get("user", "al", 1)
	require.True(t, ok)
	require.Equal(t, []Suggestion{{Word: "alice"}}, got)

	// a full list of 2 says nothing about a third candidate
	_, ok = hc.Get("user", "al", 3)
	require.False(t, ok)

	// a short list is complete for any limit
	hc.Put("user", "ali", 5, full)
	got, ok = hc.Get("user", "ali", 50)
	require.True(t, ok)
	require.Len(t, got, 2)

	_, ok = hc.Get("team", "al", 1)
	require.False(t, ok)
}

func TestHotCacheInvalidate(t *testing.T) {
	hc := NewHotCache(8)
	hc.Put("user", "a", 10, nil)
	hc.Put("user", "al", 10, nil)
	hc.Put("user", "b", 10, nil)
	hc.Put("team", "al", 10, nil)

	hc.Invalidate("user", "alice")

	_, ok := hc.Get("user", "a", 10)
	require.False(t, ok)
	_, ok = hc.Get("user", "al", 10)
	require.False(t, ok)
	_, ok = hc.Get("user", "b", 10)
	require.True(t, ok)
	_, ok = hc.Get("team", "al", 10)
	require.True(t, ok)

	hc.Clear("team")
	_, ok = hc.Get("team", "al", 10)
	require.False(t, ok)
	require.Equal(t, 1, hc.Stats()["hotCacheEntries"])
}

func TestHotCacheEvictsLeastRecentlyUsed(t *testing.T) {
	hc := NewHotCache(2)
	hc.Put("user", "a", 10, nil)
	hc.Put("user", "b", 10, nil)
	_, _ = hc.Get("user", "a", 10)
	hc.Put("user", "c", 10, nil)

	_, ok := hc.Get("user", "b", 10)
	require.False(t, ok)
	_, ok = hc.Get("user", "a", 10)
	require.True(t, ok)
	_, ok = hc.Get("user", "c", 10)
	require.True(t, ok)
}

func TestHotCacheDisabled(t *testing.T) {
	hc := NewHotCache(0)
	hc.Put("user", "a", 10, []Suggestion{{Word: "alice"}})
	_, ok := hc.Get("user", "a", 10)
	require.False(t, ok)

	var nilCache *HotCache
	_, ok = nilCache.Get("user", "a", 10)
	require.False(t, ok)
}
