package plotscript

import (
	"container/list"
	"encoding/binary"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// cacheKey is the 128-bit hash of one (script, data, timeout) triple.
type cacheKey [2]uint64

func makeCacheKey(script, data string, timeout time.Duration) cacheKey {
	h := murmur3.New128()
	_, _ = h.Write([]byte(script))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(data))
	_, _ = h.Write([]byte{0})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(timeout))
	_, _ = h.Write(buf[:])
	h1, h2 := h.Sum128()
	return cacheKey{h1, h2}
}

// resultCache is a fixed-capacity LRU over successful interpretation
// results. Successful runs are deterministic for a given input triple, so
// cached shapes never go stale. Entries hold a canonical deep copy; hits
// hand out fresh copies so callers cannot mutate cached state.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[cacheKey]*list.Element
	hits     uint64
	misses   uint64
	logger   *Logger
}

type cacheEntry struct {
	key    cacheKey
	shapes []Shape
}

func newResultCache(capacity int, logger *Logger) *resultCache {
	return &resultCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element),
		logger:   logger,
	}
}

func (c *resultCache) get(script, data string, timeout time.Duration) ([]Shape, bool) {
	key := makeCacheKey(script, data, timeout)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits++
	c.logger.DebugCat(CatCache, "hit %016x%016x", key[0], key[1])
	return copyShapes(el.Value.(*cacheEntry).shapes), true
}

func (c *resultCache) put(script, data string, timeout time.Duration, shapes []Shape) {
	key := makeCacheKey(script, data, timeout)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).shapes = copyShapes(shapes)
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, shapes: copyShapes(shapes)})
	c.entries[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.logger.TraceCat(CatCache, "evicted oldest entry, size %d", c.order.Len())
	}
}

func (c *resultCache) stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.order.Len()
}
