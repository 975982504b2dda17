package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wonny/allocation/internal/api/handlers"
	"github.com/wonny/allocation/internal/chart"
	"github.com/wonny/allocation/internal/dashboard"
	"github.com/wonny/allocation/internal/portfolio"
	"github.com/wonny/allocation/internal/realtime"
	"github.com/wonny/allocation/internal/scheduler"
	"github.com/wonny/allocation/internal/scheduler/jobs"
	"github.com/wonny/allocation/pkg/config"
	"github.com/wonny/allocation/pkg/logger"
	"github.com/wonny/allocation/pkg/redis"
)

// loadConfig reads the environment and applies flag overrides
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.portfolioFile != "" {
		cfg.Portfolio.File = opts.portfolioFile
	}
	if opts.mode != "" {
		cfg.Portfolio.AllocationMode = opts.mode
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// cliLogger keeps one-shot commands quiet on stderr unless --verbose
func cliLogger(w io.Writer, opts *globalOptions) *logger.Logger {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	return logger.NewWithWriter(w, level)
}

func newConstructor(cfg *config.Config, log *logger.Logger) (*portfolio.Constructor, error) {
	mode, err := portfolio.ParseAllocationMode(cfg.Portfolio.AllocationMode)
	if err != nil {
		return nil, err
	}
	c := portfolio.DefaultConstraints()
	c.Mode = mode
	return portfolio.NewConstructor(c, log), nil
}

// newSource creates and loads the snapshot source
func newSource(cfg *config.Config, log *logger.Logger) (*realtime.Source, error) {
	constructor, err := newConstructor(cfg, log)
	if err != nil {
		return nil, err
	}

	source := realtime.NewSource(cfg.Portfolio.File, constructor, dashboard.NewBuilder(), log)
	if err := source.Load(); err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	return source, nil
}

// newCaches picks Redis when enabled, otherwise an in-process chart cache and
// no dashboard cache. The returned closer releases the Redis connection.
func newCaches(ctx context.Context, cfg *config.Config, log *logger.Logger) (chart.Cache, handlers.ViewCache, func() error, error) {
	if !cfg.Redis.Enabled {
		return chart.NewMemoryCache(cfg.Chart.CacheTTL), nil, func() error { return nil }, nil
	}

	client, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithField("host", cfg.Redis.Host).Info("Chart and dashboard caches backed by Redis")

	cache := redis.NewCache(client, "allocation")
	return chart.NewRedisCache(cache, cfg.Chart.CacheTTL, log), cache, client.Close, nil
}

// newScheduler registers the background jobs that apply to this configuration:
// file polling when a portfolio file is set, pruning when charts are cached in-process
func newScheduler(cfg *config.Config, source *realtime.Source, cache chart.Cache, log *logger.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log, scheduler.DefaultOptions())

	if cfg.Portfolio.File != "" && cfg.Portfolio.ReloadSchedule != "" {
		if err := sched.AddJob(jobs.NewReloadJob(source, cfg.Portfolio.ReloadSchedule, log)); err != nil {
			return nil, err
		}
	}
	if mem, ok := cache.(*chart.MemoryCache); ok {
		if err := sched.AddJob(jobs.NewCacheCleanupJob(mem, log)); err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func newRenderer(cfg *config.Config, cache chart.Cache, log *logger.Logger) *chart.Renderer {
	return chart.NewRenderer(chart.Options{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Theme:  cfg.Chart.Theme,
	}, cache, log)
}

const shutdownTimeout = 30 * time.Second
