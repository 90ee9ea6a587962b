// Package cache is the TTL read cache that sits in front of repository loads.
//
// Entries are keyed "entity:filter". A successful write must call
// Invalidate for its entity before the next read is expected to see it;
// relying on TTL expiry alone is not enough.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/studylog/internal/logger"
)

const maxEntries = 256

// Cache is safe for concurrent use.
type Cache struct {
	lru   *expirable.LRU[string, any]
	group singleflight.Group

	mu  sync.Mutex
	gen map[string]uint64 // per-entity generation, bumped on every invalidation
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, any](maxEntries, nil, ttl),
		gen: make(map[string]uint64),
	}
}

// Key builds the cache key for an entity and filter.
func Key(entity, filter string) string {
	return entity + ":" + filter
}

func (c *Cache) generation(entity string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[entity]
}

// Invalidate drops every entry for entity. Loads already in flight for the
// entity will not store their result.
func (c *Cache) Invalidate(entity string) {
	c.mu.Lock()
	c.gen[entity]++
	c.mu.Unlock()

	prefix := entity + ":"
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
	logger.Debug("cache invalidated", "entity", entity)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	for k := range c.gen {
		c.gen[k]++
	}
	c.mu.Unlock()
	c.lru.Purge()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Load returns the cached value for entity and filter, or calls fn once for
// all concurrent callers and caches its result.
func Load[T any](c *Cache, entity, filter string, fn func() (T, error)) (T, error) {
	key := Key(entity, filter)
	if v, ok := c.lru.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	// Flights are per generation: a read after Invalidate never joins an
	// older load.
	gen := c.generation(entity)
	v, err, _ := c.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		logger.Debug("cache miss", "key", key)
		res, err := fn()
		if err != nil {
			return nil, err
		}
		if c.generation(entity) == gen {
			c.lru.Add(key, res)
		}
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
