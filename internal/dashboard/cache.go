package dashboard

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

type cacheKey struct {
	Dataset  string
	Variable string
	Key      string
}

// imageCache tracks image references in recency order. lru.Cache is not
// safe for concurrent use, hence the mutex.
type imageCache struct {
	mu      sync.Mutex
	lru     *lru.Cache
	evicted []cacheKey
}

func newImageCache(max int) *imageCache {
	c := &imageCache{lru: lru.New(max)}
	c.lru.OnEvicted = func(k lru.Key, _ interface{}) {
		c.evicted = append(c.evicted, k.(cacheKey))
	}
	return c
}

// add records k as most recently used and returns the entries it pushed out.
func (c *imageCache) add(k cacheKey, ref string) []cacheKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(k, ref)
	out := c.evicted
	c.evicted = nil
	return out
}

func (c *imageCache) touch(k cacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Get(k)
}

func (c *imageCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
