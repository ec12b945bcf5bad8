package plotscript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyDistinctness(t *testing.T) {
	base := makeCacheKey("script", "data", time.Second)

	assert.Equal(t, base, makeCacheKey("script", "data", time.Second))
	assert.NotEqual(t, base, makeCacheKey("script2", "data", time.Second))
	assert.NotEqual(t, base, makeCacheKey("script", "data2", time.Second))
	assert.NotEqual(t, base, makeCacheKey("script", "data", 2*time.Second))

	// The script/data boundary must not be ambiguous.
	assert.NotEqual(t, makeCacheKey("ab", "c", time.Second), makeCacheKey("a", "bc", time.Second))
}

func TestResultCacheLRU(t *testing.T) {
	c := newResultCache(2, NewLogger(false))

	shape := func(id string) []Shape { return []Shape{{ID: id, Type: TypePoint}} }

	c.put("s1", "", time.Second, shape("P0"))
	c.put("s2", "", time.Second, shape("P1"))

	// Touch s1 so s2 becomes the eviction candidate.
	_, ok := c.get("s1", "", time.Second)
	require.True(t, ok)

	c.put("s3", "", time.Second, shape("P2"))

	_, ok = c.get("s2", "", time.Second)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.get("s1", "", time.Second)
	assert.True(t, ok)
	_, ok = c.get("s3", "", time.Second)
	assert.True(t, ok)

	hits, misses, size := c.stats()
	assert.Equal(t, uint64(3), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 2, size)
}

func TestResultCacheCopiesShapes(t *testing.T) {
	c := newResultCache(4, NewLogger(false))

	original := []Shape{{ID: "Pg0", Type: TypePolygon, Points: []Coord{{1, 1}}}}
	c.put("s", "", time.Second, original)

	// Mutating the stored-from slice must not reach the cache.
	original[0].Points[0].X = 99

	got, ok := c.get("s", "", time.Second)
	require.True(t, ok)
	assert.Equal(t, 1.0, got[0].Points[0].X)

	// Mutating a returned slice must not reach later readers.
	got[0].Points[0].X = 42
	again, ok := c.get("s", "", time.Second)
	require.True(t, ok)
	assert.Equal(t, 1.0, again[0].Points[0].X)
}

func TestResultCacheUpdateExisting(t *testing.T) {
	c := newResultCache(2, NewLogger(false))

	c.put("s", "", time.Second, []Shape{{ID: "P0", Type: TypePoint}})
	c.put("s", "", time.Second, []Shape{{ID: "C0", Type: TypeCircle}})

	_, _, size := c.stats()
	assert.Equal(t, 1, size, "same key should overwrite, not grow")

	got, ok := c.get("s", "", time.Second)
	require.True(t, ok)
	assert.Equal(t, "C0", got[0].ID)
}
