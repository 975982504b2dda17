package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/dashboard"
	"github.com/wonny/allocation/internal/portfolio"
	"github.com/wonny/allocation/pkg/logger"
)

// ErrNotLoaded is returned before the first successful Load
var ErrNotLoaded = errors.New("portfolio not loaded")

// Source owns the current portfolio snapshot and swaps it on reload
// ⭐ SSOT: the only holder of the live portfolio
type Source struct {
	path        string // empty means the embedded sample
	constructor *portfolio.Constructor
	builder     *dashboard.Builder
	logger      *logger.Logger

	current   atomic.Pointer[portfolio.Portfolio]
	reloadMu  sync.Mutex
	publisher atomic.Pointer[publisherRef]
}

type publisherRef struct{ p Publisher }

// NewSource creates a snapshot source for path
func NewSource(path string, c *portfolio.Constructor, b *dashboard.Builder, log *logger.Logger) *Source {
	return &Source{
		path:        path,
		constructor: c,
		builder:     b,
		logger:      log,
	}
}

// SetPublisher registers where reload events go
func (s *Source) SetPublisher(p Publisher) {
	s.publisher.Store(&publisherRef{p: p})
}

// Load reads the portfolio for the first time. Invalid input is fatal here.
func (s *Source) Load() error {
	p, err := s.construct()
	if err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}

// Reload re-reads the portfolio file and swaps the snapshot when its content changed.
// A failed reload keeps the previous snapshot and reports the error to subscribers.
func (s *Source) Reload(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.path == "" {
		return false, nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	prev := s.current.Load()

	next, err := s.construct()
	if err != nil {
		s.logger.WithError(err).WithField("file", s.path).Warn("Portfolio reload failed, keeping previous snapshot")
		ev := contracts.DashboardEvent{Type: contracts.EventError, Error: err.Error()}
		if prev != nil {
			ev.Revision = prev.Revision
		}
		s.publish(ev)
		return false, err
	}

	if prev != nil && prev.Hash == next.Hash {
		return false, nil
	}

	s.current.Store(next)

	log := s.logger.WithFields(map[string]interface{}{
		"file":     s.path,
		"revision": next.Revision,
	})
	log.Info("Portfolio reloaded")

	d, err := s.builder.Build(next, portfolio.Filter{})
	if err != nil {
		log.WithError(err).Error("Dashboard build failed after reload")
	}
	s.publish(contracts.DashboardEvent{
		Type:      contracts.EventReloaded,
		Revision:  next.Revision,
		Dashboard: d,
	})

	return true, nil
}

// Revision returns the current snapshot revision
func (s *Source) Revision() string {
	if p := s.current.Load(); p != nil {
		return p.Revision
	}
	return ""
}

// Dashboard builds the dashboard of the current snapshot for spec
func (s *Source) Dashboard(spec contracts.FilterSpec) (*contracts.Dashboard, error) {
	_, d, err := s.Snapshot(spec)
	return d, err
}

// Snapshot returns the current portfolio together with its dashboard.
// Both come from the same snapshot even while a reload swaps it.
func (s *Source) Snapshot(spec contracts.FilterSpec) (*portfolio.Portfolio, *contracts.Dashboard, error) {
	p := s.current.Load()
	if p == nil {
		return nil, nil, ErrNotLoaded
	}
	d, err := s.builder.Build(p, portfolio.FilterFromSpec(spec))
	if err != nil {
		return nil, nil, err
	}
	return p, d, nil
}

// SnapshotEvent describes the current state for a newly connected subscriber
func (s *Source) SnapshotEvent() contracts.DashboardEvent {
	d, err := s.Dashboard(contracts.FilterSpec{})
	if err != nil {
		return contracts.DashboardEvent{Type: contracts.EventError, Revision: s.Revision(), Error: err.Error()}
	}
	return contracts.DashboardEvent{Type: contracts.EventSnapshot, Revision: d.Revision, Dashboard: d}
}

func (s *Source) construct() (*portfolio.Portfolio, error) {
	if s.path == "" {
		return s.constructor.LoadDefault()
	}
	p, err := s.constructor.LoadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}
	return p, nil
}

func (s *Source) publish(ev contracts.DashboardEvent) {
	if ref := s.publisher.Load(); ref != nil && ref.p != nil {
		ref.p.Publish(ev)
	}
}
