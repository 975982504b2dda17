package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/allocation/pkg/logger"
)

// Reloader re-reads the portfolio and reports whether the snapshot changed
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// ReloadJob polls the portfolio file on a schedule
type ReloadJob struct {
	source   Reloader
	schedule string
	logger   *logger.Logger
}

// NewReloadJob creates a new reload job
func NewReloadJob(source Reloader, schedule string, log *logger.Logger) *ReloadJob {
	return &ReloadJob{
		source:   source,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ReloadJob) Name() string {
	return "portfolio_reload"
}

// Schedule returns the configured cron schedule
func (j *ReloadJob) Schedule() string {
	return j.schedule
}

// Run reloads the portfolio once
func (j *ReloadJob) Run(ctx context.Context) error {
	changed, err := j.source.Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload portfolio: %w", err)
	}

	if changed {
		j.logger.Info("Scheduled reload picked up a new portfolio")
	}
	return nil
}
