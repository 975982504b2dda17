package chart

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/allocation/pkg/logger"
	"github.com/wonny/allocation/pkg/redis"
)

// Cache stores rendered chart images
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, img []byte)
}

type memoryEntry struct {
	createdAt time.Time
	image     []byte
}

// MemoryCache is an in-process TTL cache
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache; ttl <= 0 disables caching
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.createdAt.Add(c.ttl)) {
		delete(c.entries, key)
		return nil, false
	}
	img := make([]byte, len(entry.image))
	copy(img, entry.image)
	return img, true
}

func (c *MemoryCache) Set(_ context.Context, key string, img []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.pruneLocked(now)
	c.entries[key] = memoryEntry{createdAt: now, image: img}
}

// Prune drops expired entries and returns how many were removed
func (c *MemoryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked(c.now())
}

// caller holds c.mu
func (c *MemoryCache) pruneLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.createdAt.Add(c.ttl)) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RedisCache shares rendered charts between instances through Redis
type RedisCache struct {
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisCache creates a RedisCache on top of a pkg/redis cache helper
func NewRedisCache(cache *redis.Cache, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{cache: cache, ttl: ttl, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	img, found, err := c.cache.GetBytes(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Chart cache read failed")
		return nil, false
	}
	return img, found
}

func (c *RedisCache) Set(ctx context.Context, key string, img []byte) {
	if err := c.cache.SetBytes(ctx, key, img, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Chart cache write failed")
	}
}
