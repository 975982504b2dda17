package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values and raw blobs under a key prefix
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get decodes a cached JSON value into dest
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, found, err := c.GetBytes(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores value as JSON with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.SetBytes(ctx, key, data, ttl)
}

// GetBytes returns the raw cached blob. A missing key is not an error.
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.client.Enabled() {
		return nil, false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get failed: %w", err)
	}
	return data, true, nil
}

// SetBytes stores a raw blob with TTL
func (c *Cache) SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// TTLShort bounds how long a built dashboard is served from the cache
const TTLShort = 1 * time.Minute

// ChartKey names a rendered chart for one portfolio revision and filter
func ChartKey(kind, revision, filterKey string) string {
	if filterKey == "" {
		filterKey = "all"
	}
	return fmt.Sprintf("chart:%s:%s:%s", kind, revision, filterKey)
}

// DashboardKey names a built dashboard for one portfolio revision and filter
func DashboardKey(revision, filterKey string) string {
	if filterKey == "" {
		filterKey = "all"
	}
	return fmt.Sprintf("dashboard:%s:%s", revision, filterKey)
}
