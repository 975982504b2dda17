package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocation/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // number of runs that fail before succeeding
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("not yet")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(logger.Nop(), Options{MaxRetries: retries})
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}))

	err := s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"})
	assert.Error(t, err)

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler(0)

	err := s.AddJob(&fakeJob{name: "bad", schedule: "not a schedule"})
	require.Error(t, err)
	assert.Empty(t, s.GetAllJobs())
}

func TestScheduler_RunJobRetries(t *testing.T) {
	s := newTestScheduler(2)
	job := &fakeJob{name: "flaky", schedule: "@every 1h", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.Equal(t, 1.0, history.SuccessRate())
}

func TestScheduler_RunJobGivesUp(t *testing.T) {
	s := newTestScheduler(1)
	require.NoError(t, s.AddJob(&fakeJob{name: "broken", schedule: "@every 1h", failures: 100}))

	result, err := s.RunJob("broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "not yet", result.Error)

	all := s.GetJobStats()
	require.Len(t, all, 1)
	stats := all[0]
	assert.Equal(t, "broken", stats.JobName)
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	require.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestScheduler_UnknownJob(t *testing.T) {
	s := newTestScheduler(0)

	_, err := s.RunJob("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = s.GetJobHistory("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_StatsTrackLastOutcomes(t *testing.T) {
	s := newTestScheduler(0)
	// fails once, then succeeds on every later run
	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@every 1h", failures: 1}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}))

	for i := 0; i < 3; i++ {
		_, err := s.RunJob("b")
		require.NoError(t, err)
	}

	stats := s.GetJobStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "a", stats[0].JobName)
	assert.Zero(t, stats[0].TotalRuns)
	assert.Nil(t, stats[0].LastRun)

	b := stats[1]
	assert.Equal(t, 3, b.TotalRuns)
	assert.Equal(t, 2, b.SuccessCount)
	assert.Equal(t, 1, b.FailureCount)
	require.NotNil(t, b.LastSuccess)
	require.NotNil(t, b.LastFailure)
	assert.Equal(t, *b.LastRun, *b.LastSuccess)
	assert.True(t, b.LastFailure.Before(*b.LastSuccess) || b.LastFailure.Equal(*b.LastSuccess))
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := newTestScheduler(0)
	job := &fakeJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	_, ok := h.Last()
	assert.False(t, ok)
	assert.Zero(t, h.SuccessRate())

	for i := 0; i < maxHistory+10; i++ {
		h.record(JobResult{Attempts: i, Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, 10, h.Results[0].Attempts)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, maxHistory+9, last.Attempts)

	succeeded, failed := h.Counts()
	assert.Equal(t, maxHistory/2, succeeded)
	assert.Equal(t, maxHistory/2, failed)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}
