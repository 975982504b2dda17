package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/allocation/internal/scheduler"
	"github.com/wonny/allocation/pkg/logger"
)

type fakeRunner struct {
	err error
}

func (f *fakeRunner) GetJobStats() []scheduler.JobStats { return nil }

func (f *fakeRunner) GetJobHistory(jobName string) (scheduler.JobHistory, error) {
	return scheduler.JobHistory{}, f.err
}

func (f *fakeRunner) RunJob(jobName string) (scheduler.JobResult, error) {
	return scheduler.JobResult{JobName: jobName}, f.err
}

func TestJobsHandler_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown job", fmt.Errorf("%w: nope", scheduler.ErrJobNotFound), http.StatusNotFound},
		{"scheduler fault", errors.New("stopped"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewJobsHandler(&fakeRunner{err: tt.err}, logger.Nop())
			req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/jobs/nope/run", nil), map[string]string{"name": "nope"})

			rec := httptest.NewRecorder()
			h.Run(rec, req)
			assert.Equal(t, tt.want, rec.Code)

			rec = httptest.NewRecorder()
			h.History(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
