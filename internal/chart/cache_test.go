package chart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocation/pkg/config"
	"github.com/wonny/allocation/pkg/logger"
	"github.com/wonny/allocation/pkg/redis"
)

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", []byte("img"))

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("img"), got)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_ReturnsCopy(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("abc"))

	got, _ := c.Get(ctx, "k")
	got[0] = 'x'

	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_PrunesOnSet(t *testing.T) {
	c := NewMemoryCache(time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "old", []byte("1"))
	now = now.Add(2 * time.Second)
	c.Set(ctx, "new", []byte("2"))

	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ZeroTTLDisables(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("img"))

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_DisabledClientMisses(t *testing.T) {
	ctx := context.Background()
	client, err := redis.New(ctx, &config.Config{})
	require.NoError(t, err)
	c := NewRedisCache(redis.NewCache(client, "test"), time.Minute, logger.Nop())

	c.Set(ctx, "k", []byte("img"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Prune(t *testing.T) {
	c := NewMemoryCache(time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	assert.Equal(t, 0, c.Prune())

	now = now.Add(time.Second)
	assert.Equal(t, 2, c.Prune())
	assert.Equal(t, 0, c.Len())
}
