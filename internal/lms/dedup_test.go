package lms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupCacheGetPut(t *testing.T) {
	c := newDedupCache(2)
	_, ok := c.get("a")
	require.False(t, ok)

	c.put("a", cachedResult{Response: []byte("a-resp")})
	r, ok := c.get("a")
	require.True(t, ok)
	require.Equal(t, []byte("a-resp"), r.Response)
}

func TestDedupCacheEvictsOldestPastCapacity(t *testing.T) {
	c := newDedupCache(2)
	c.put("a", cachedResult{Response: []byte("1")})
	c.put("b", cachedResult{Response: []byte("2")})
	c.put("c", cachedResult{Response: []byte("3")})

	_, ok := c.get("a")
	require.False(t, ok, "oldest entry should have been evicted")

	_, ok = c.get("b")
	require.True(t, ok)
	_, ok = c.get("c")
	require.True(t, ok)
}

func TestDedupCachePutOverwritesExistingWithoutEvicting(t *testing.T) {
	c := newDedupCache(2)
	c.put("a", cachedResult{Response: []byte("1")})
	c.put("b", cachedResult{Response: []byte("2")})
	c.put("a", cachedResult{Response: []byte("1-updated")})

	r, ok := c.get("a")
	require.True(t, ok)
	require.Equal(t, []byte("1-updated"), r.Response)

	_, ok = c.get("b")
	require.True(t, ok, "overwriting an existing key must not evict another entry")
}

func TestDedupCacheCapacityHolds(t *testing.T) {
	c := newDedupCache(8)
	for i := 0; i < 20; i++ {
		c.put(fmt.Sprintf("req-%d", i), cachedResult{Response: []byte{byte(i)}})
	}
	present := 0
	for i := 0; i < 20; i++ {
		if _, ok := c.get(fmt.Sprintf("req-%d", i)); ok {
			present++
		}
	}
	require.Equal(t, 8, present)
}
