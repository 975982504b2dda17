package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocation/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(disabledClient(t), "test")

	require.NoError(t, cache.Set(ctx, "key", map[string]int{"a": 1}, time.Minute))

	var result map[string]int
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetBytes(ctx, "png", []byte{0x89}, time.Minute))
	data, found, err := cache.GetBytes(ctx, "png")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestChartKey(t *testing.T) {
	assert.Equal(t, "chart:pie:01J:all", ChartKey("pie", "01J", ""))
	assert.Equal(t, "chart:bar:01J:risk=Low", ChartKey("bar", "01J", "risk=Low"))
}

func TestDashboardKey(t *testing.T) {
	assert.Equal(t, "dashboard:01J:all", DashboardKey("01J", ""))
	assert.Equal(t, "dashboard:01J:risk=Low;purpose=", DashboardKey("01J", "risk=Low;purpose="))
}
