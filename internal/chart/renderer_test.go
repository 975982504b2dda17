package chart

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/dashboard"
	"github.com/wonny/allocation/internal/portfolio"
	"github.com/wonny/allocation/pkg/logger"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleDashboard(t *testing.T, f portfolio.Filter) *contracts.Dashboard {
	t.Helper()
	p, err := portfolio.NewConstructor(portfolio.DefaultConstraints(), logger.Nop()).LoadDefault()
	require.NoError(t, err)
	d, err := dashboard.NewBuilder().Build(p, f)
	require.NoError(t, err)
	return d
}

// countingCache records hits and misses around a MemoryCache
type countingCache struct {
	*MemoryCache
	hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	img, ok := c.MemoryCache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return img, ok
}

func (c *countingCache) Set(ctx context.Context, key string, img []byte) {
	c.sets++
	c.MemoryCache.Set(ctx, key, img)
}

func TestRenderer_ProducesPNG(t *testing.T) {
	r := NewRenderer(Options{Width: 640, Height: 480}, nil, logger.Nop())
	d := sampleDashboard(t, portfolio.Filter{})
	ctx := context.Background()

	tests := []struct {
		name   string
		render func(context.Context, *contracts.Dashboard) ([]byte, error)
	}{
		{"allocation pie", r.AllocationPie},
		{"reward bar", r.RewardBar},
		{"risk reward bar", r.RiskRewardBar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.render(ctx, d)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(img, pngMagic), "expected PNG output")
		})
	}
}

func TestRenderer_UsesCache(t *testing.T) {
	cache := &countingCache{MemoryCache: NewMemoryCache(time.Minute)}
	r := NewRenderer(Options{}, cache, logger.Nop())
	d := sampleDashboard(t, portfolio.Filter{})
	ctx := context.Background()

	first, err := r.RewardBar(ctx, d)
	require.NoError(t, err)
	second, err := r.RewardBar(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

func TestRenderer_CacheKeyIncludesFilter(t *testing.T) {
	cache := &countingCache{MemoryCache: NewMemoryCache(time.Minute)}
	r := NewRenderer(Options{}, cache, logger.Nop())
	ctx := context.Background()

	all := sampleDashboard(t, portfolio.Filter{})
	income := sampleDashboard(t, portfolio.Filter{Purposes: []string{"Regular monthly income"}})
	income.Revision = all.Revision

	_, err := r.AllocationPie(ctx, all)
	require.NoError(t, err)
	_, err = r.AllocationPie(ctx, income)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.sets)
	assert.Equal(t, 0, cache.hits)
	assert.Equal(t, 2, cache.Len())
}

func TestRenderer_NoPoints(t *testing.T) {
	r := NewRenderer(Options{}, nil, logger.Nop())
	_, err := r.AllocationPie(context.Background(), &contracts.Dashboard{Revision: "r"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoPoints)
}
