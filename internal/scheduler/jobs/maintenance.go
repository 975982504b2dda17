package jobs

import (
	"context"

	"github.com/wonny/allocation/pkg/logger"
)

// Pruner drops expired entries and returns how many were removed
type Pruner interface {
	Prune() int
	Len() int
}

// CacheCleanupJob evicts expired chart images from the in-process cache
type CacheCleanupJob struct {
	cache  Pruner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache Pruner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "chart_cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	count := j.cache.Prune()

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed":   count,
			"remaining": j.cache.Len(),
		}).Info("Chart cache cleanup completed")
	}

	return nil
}
