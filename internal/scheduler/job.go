package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned for a job name that was never added
var ErrJobNotFound = errors.New("job not found")

// Job represents a scheduled job
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression
	// Six fields with seconds, or a descriptor:
	//   "0 */5 * * * *", "@every 30s", "@hourly"
	Schedule() string
}

// JobResult is the outcome of one run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const maxHistory = 100

// JobHistory holds the last maxHistory results of one job, oldest first
type JobHistory struct {
	Results []JobResult `json:"results"`
}

func (h *JobHistory) record(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - maxHistory; over > 0 {
		h.Results = append(h.Results[:0], h.Results[over:]...)
	}
}

// Last returns the most recent result
func (h JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// Counts splits the recorded runs into successes and failures
func (h JobHistory) Counts() (succeeded, failed int) {
	for _, r := range h.Results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// SuccessRate is in [0, 1]; zero when nothing ran yet
func (h JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	succeeded, _ := h.Counts()
	return float64(succeeded) / float64(len(h.Results))
}

// JobStats summarises the history of one job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

func statsOf(job Job, h JobHistory) JobStats {
	succeeded, failed := h.Counts()
	st := JobStats{
		JobName:      job.Name(),
		Schedule:     job.Schedule(),
		TotalRuns:    len(h.Results),
		SuccessCount: succeeded,
		FailureCount: failed,
		SuccessRate:  h.SuccessRate(),
	}

	if last, ok := h.Last(); ok {
		st.LastRun = &last.StartTime
	}

	// walk back until both the last success and the last failure are known
	for i := len(h.Results) - 1; i >= 0; i-- {
		r := h.Results[i]
		if r.Success && st.LastSuccess == nil {
			st.LastSuccess = &r.StartTime
		}
		if !r.Success && st.LastFailure == nil {
			st.LastFailure = &r.StartTime
		}
		if st.LastSuccess != nil && st.LastFailure != nil {
			break
		}
	}
	return st
}
