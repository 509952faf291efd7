package query

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/existflow/carnet/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Key builds a deterministic composite cache key from resource name and
// parameters. Same inputs always yield the same key, so fetchers and
// invalidation agree on what they are talking about.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

type entry struct {
	data      any
	expiresAt time.Time
}

// Cache is a TTL cache over resource responses with in-flight request
// deduplication: concurrent fetches for the same key share one network
// call. Mutating commands invalidate by resource prefix.
type Cache struct {
	store sync.Map
	ttl   time.Duration
	group singleflight.Group
}

// New creates a cache with the given entry TTL
func New(ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl}
	go c.startCleanup()
	return c
}

// Get returns a cached value if present and not expired
func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		return nil, false
	}
	return e.data, true
}

// Set stores a value under key with the cache's TTL
func (c *Cache) Set(key string, value any) {
	c.store.Store(key, entry{data: value, expiresAt: time.Now().Add(c.ttl)})
}

// Fetch returns the cached value for key, or runs fetch and caches its
// result. Concurrent callers for the same key are collapsed into one
// fetch. Errors are never cached.
func (c *Cache) Fetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		logger.Debug("Cache hit", logger.F("key", key))
		return v, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the entry while we waited
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Cache fetch deduplicated", logger.F("key", key))
	}
	return v, nil
}

// Invalidate drops one entry
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}

// InvalidatePrefix drops every entry whose key starts with prefix. Used
// after mutations: creating a recipe invalidates "recipes/".
func (c *Cache) InvalidatePrefix(prefix string) {
	c.store.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.store.Delete(key)
		}
		return true
	})
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, val any) bool {
			if now.After(val.(entry).expiresAt) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
