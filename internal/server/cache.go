package server

import (
	"log/slog"
	"sync"
	"time"
)

type cacheEntry struct {
	data      any
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with TTL expiration. The sizing
// handler uses it to serve repeated identical requests without recomputing.
type Cache struct {
	store sync.Map
	ttl   time.Duration
}

// NewCache creates a cache; a ttl of 0 disables storage entirely.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl}
	if ttl > 0 {
		go c.startCleanup()
	}
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	if c.ttl == 0 {
		return nil, false
	}
	val, ok := c.store.Load(key)
	if !ok {
		return nil, false
	}
	e := val.(cacheEntry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		return nil, false
	}
	return e.data, true
}

func (c *Cache) Set(key string, value any) {
	if c.ttl == 0 {
		return
	}
	c.store.Store(key, cacheEntry{
		data:      value,
		expiresAt: time.Now().Add(c.ttl),
	})
	slog.Debug("cache set", "key", key, "ttl", c.ttl)
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, val any) bool {
			if now.After(val.(cacheEntry).expiresAt) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
