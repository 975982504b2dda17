package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/allocation/internal/scheduler"
	"github.com/wonny/allocation/pkg/logger"
)

// JobRunner is the part of the scheduler the jobs endpoints need
type JobRunner interface {
	GetJobStats() []scheduler.JobStats
	GetJobHistory(jobName string) (scheduler.JobHistory, error)
	RunJob(jobName string) (scheduler.JobResult, error)
}

// JobsHandler exposes background job status and manual runs
type JobsHandler struct {
	jobs   JobRunner
	logger *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jobs JobRunner, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		jobs:   jobs,
		logger: log,
	}
}

// List returns the statistics of every registered job
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.jobs.GetJobStats(),
	})
}

// History returns the recorded runs of one job, oldest first
// GET /api/jobs/{name}/history
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.jobs.GetJobHistory(name)
	if err != nil {
		h.respondJobError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":     name,
		"results": history.Results,
	})
}

// Run executes one job now and waits for the outcome
// POST /api/jobs/{name}/run
func (h *JobsHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := h.jobs.RunJob(name)
	if err != nil {
		h.respondJobError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"job":      name,
		"success":  result.Success,
		"attempts": result.Attempts,
	}).Info("Job run on request")

	// a failed run is still a completed request; the result carries the error
	respondJSON(w, http.StatusOK, result)
}

func (h *JobsHandler) respondJobError(w http.ResponseWriter, err error) {
	if errors.Is(err, scheduler.ErrJobNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.WithError(err).Error("Job request failed")
	respondError(w, http.StatusInternalServerError, err.Error())
}
