package chart

import (
	"context"
	"errors"
	"fmt"

	"github.com/vicanso/go-charts/v2"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/portfolio"
	"github.com/wonny/allocation/pkg/logger"
	"github.com/wonny/allocation/pkg/redis"
)

// Chart kinds, also used in cache keys
const (
	KindAllocation = "allocation"
	KindReward     = "reward"
	KindRiskReward = "risk-reward"
)

var errNoPoints = errors.New("chart has no data points")

// Options holds rendering-layer styling
type Options struct {
	Width  int
	Height int
	Theme  string // go-charts theme name: light, dark, grafana, ant
}

// Renderer draws dashboard projections as PNG images
type Renderer struct {
	opts   Options
	cache  Cache
	logger *logger.Logger
}

// NewRenderer creates a chart renderer. cache may be nil.
func NewRenderer(opts Options, cache Cache, log *logger.Logger) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Theme == "" {
		opts.Theme = charts.ThemeLight
	}
	return &Renderer{opts: opts, cache: cache, logger: log}
}

// AllocationPie renders allocation shares by asset class
func (r *Renderer) AllocationPie(ctx context.Context, d *contracts.Dashboard) ([]byte, error) {
	return r.cached(ctx, KindAllocation, d, func() ([]byte, error) {
		points := d.AllocationChart
		if len(points) == 0 {
			return nil, errNoPoints
		}

		total := 0.0
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
			total += p.Value
		}
		labels := make([]string, len(points))
		for i, p := range points {
			labels[i] = fmt.Sprintf("%s (%.1f%%)", p.Label, p.Value/total*100)
		}

		opts := append([]charts.OptionFunc{
			charts.TitleTextOptionFunc("Allocation by Asset Class", fmt.Sprintf("Total allocated: %.2f%%", d.Metrics.TotalAllocation)),
			charts.LegendOptionFunc(charts.LegendOption{
				Data: labels,
				Top:  charts.PositionBottom,
			}),
			charts.PieSeriesShowLabel(),
		}, r.common()...)

		p, err := charts.PieRender(values, opts...)
		if err != nil {
			return nil, err
		}
		return p.Bytes()
	})
}

// RewardBar renders the reward of each asset class
func (r *Renderer) RewardBar(ctx context.Context, d *contracts.Dashboard) ([]byte, error) {
	return r.cached(ctx, KindReward, d, func() ([]byte, error) {
		return r.bar(d.RewardChart, "Reward by Asset Class", "Weighted average: "+d.Metrics.WeightedAverageDisplay)
	})
}

// RiskRewardBar renders the average reward per risk category
func (r *Renderer) RiskRewardBar(ctx context.Context, d *contracts.Dashboard) ([]byte, error) {
	return r.cached(ctx, KindRiskReward, d, func() ([]byte, error) {
		return r.bar(d.RiskRewardChart, "Average Reward by Risk Category", "")
	})
}

func (r *Renderer) bar(points []contracts.ChartPoint, title, subtitle string) ([]byte, error) {
	if len(points) == 0 {
		return nil, errNoPoints
	}

	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Value
	}

	p, err := charts.BarRender(
		[][]float64{values},
		append([]charts.OptionFunc{
			charts.TitleTextOptionFunc(title, subtitle),
			charts.XAxisDataOptionFunc(labels),
			charts.LegendOptionFunc(charts.LegendOption{
				Data: []string{"Reward (%)"},
				Left: charts.PositionRight,
			}),
		}, r.common()...)...,
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

func (r *Renderer) common() []charts.OptionFunc {
	return []charts.OptionFunc{
		charts.ThemeOptionFunc(r.opts.Theme),
		charts.WidthOptionFunc(r.opts.Width),
		charts.HeightOptionFunc(r.opts.Height),
		charts.PNGTypeOption(),
	}
}

func (r *Renderer) cached(ctx context.Context, kind string, d *contracts.Dashboard, render func() ([]byte, error)) ([]byte, error) {
	key := redis.ChartKey(kind, d.Revision, portfolio.FilterFromSpec(d.Filter).Key())
	if r.cache != nil {
		if img, ok := r.cache.Get(ctx, key); ok {
			return img, nil
		}
	}

	img, err := render()
	if err != nil {
		return nil, fmt.Errorf("render %s chart: %w", kind, err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, img)
	}
	r.logger.WithFields(map[string]interface{}{
		"kind":     kind,
		"revision": d.Revision,
		"bytes":    len(img),
	}).Debug("Chart rendered")

	return img, nil
}
