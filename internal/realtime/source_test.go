package realtime

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/dashboard"
	"github.com/wonny/allocation/internal/portfolio"
	"github.com/wonny/allocation/pkg/logger"
)

const twoBonds = `title: Test
instruments:
  - {name: A, risk_level: Very Low, reward_percent: 6, horizon_years: 5, allocation_percent: 50, purpose: income}
  - {name: B, risk_level: Low, reward_percent: 8, horizon_years: 5, allocation_percent: 50, purpose: growth}
`

const threeBonds = twoBonds + `  - {name: C, risk_level: Low, reward_percent: 9, horizon_years: 3, allocation_percent: 0, purpose: growth}
`

type recorder struct {
	mu     sync.Mutex
	events []contracts.DashboardEvent
}

func (r *recorder) Publish(ev contracts.DashboardEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []contracts.DashboardEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contracts.DashboardEvent(nil), r.events...)
}

func newTestSource(t *testing.T, path string) *Source {
	t.Helper()
	c := portfolio.NewConstructor(portfolio.DefaultConstraints(), logger.Nop())
	return NewSource(path, c, dashboard.NewBuilder(), logger.Nop())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSource_NotLoaded(t *testing.T) {
	s := newTestSource(t, "")

	_, err := s.Dashboard(contracts.FilterSpec{})
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Empty(t, s.Revision())

	p, d, err := s.Snapshot(contracts.FilterSpec{})
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, p)
	assert.Nil(t, d)
}

func TestSource_EmbeddedDefault(t *testing.T) {
	s := newTestSource(t, "")
	require.NoError(t, s.Load())

	d, err := s.Dashboard(contracts.FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, d.Table, 4)
	assert.Equal(t, s.Revision(), d.Revision)

	changed, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSource_ReloadSwapsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	writeFile(t, path, twoBonds)

	s := newTestSource(t, path)
	rec := &recorder{}
	s.SetPublisher(rec)
	require.NoError(t, s.Load())
	first := s.Revision()

	changed, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, changed, "unchanged file must not swap")
	assert.Equal(t, first, s.Revision())
	assert.Empty(t, rec.all())

	writeFile(t, path, threeBonds)
	changed, err = s.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, first, s.Revision())
	p, d, err := s.Snapshot(contracts.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, p.Revision, d.Revision)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, contracts.EventReloaded, events[0].Type)
	assert.Equal(t, s.Revision(), events[0].Revision)
	require.NotNil(t, events[0].Dashboard)
	assert.InDelta(t, 7.0, events[0].Dashboard.Metrics.WeightedAverageReturn, 1e-9)
}

func TestSource_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	writeFile(t, path, twoBonds)

	s := newTestSource(t, path)
	rec := &recorder{}
	s.SetPublisher(rec)
	require.NoError(t, s.Load())
	before := s.Revision()

	writeFile(t, path, "instruments: []\n")
	changed, err := s.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, portfolio.ErrEmptyPortfolio)
	assert.False(t, changed)
	assert.Equal(t, before, s.Revision())

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, contracts.EventError, events[0].Type)
	assert.Equal(t, before, events[0].Revision)
	assert.NotEmpty(t, events[0].Error)
}

func TestSource_LoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	writeFile(t, path, `instruments:
  - {name: A, risk_level: Low, reward_percent: 6, horizon_years: 5, allocation_percent: 0, purpose: x}
`)

	s := newTestSource(t, path)
	err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, portfolio.ErrInvalidAllocation)
}

func TestSource_ReloadHonoursCancelledContext(t *testing.T) {
	s := newTestSource(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Reload(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_FilterExcludingEverything(t *testing.T) {
	s := newTestSource(t, "")
	require.NoError(t, s.Load())

	_, err := s.Dashboard(contracts.FilterSpec{RiskLevels: []contracts.RiskLevel{contracts.RiskHigh}})
	assert.ErrorIs(t, err, portfolio.ErrEmptyPortfolio)
}

func TestSource_SnapshotEvent(t *testing.T) {
	s := newTestSource(t, "")

	ev := s.SnapshotEvent()
	assert.Equal(t, contracts.EventError, ev.Type)

	require.NoError(t, s.Load())
	ev = s.SnapshotEvent()
	assert.Equal(t, contracts.EventSnapshot, ev.Type)
	assert.Equal(t, s.Revision(), ev.Revision)
	require.NotNil(t, ev.Dashboard)
}

func TestSource_SnapshotConsistentDuringReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	writeFile(t, path, twoBonds)

	s := newTestSource(t, path)
	require.NoError(t, s.Load())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			content := twoBonds
			if i%2 == 0 {
				content = threeBonds
			}
			_ = os.WriteFile(path, []byte(content), 0o644)
			_, _ = s.Reload(context.Background())
		}
	}()

	for i := 0; i < 200; i++ {
		p, d, err := s.Snapshot(contracts.FilterSpec{})
		require.NoError(t, err)
		assert.Equal(t, p.Revision, d.Revision)
		assert.Len(t, d.Table, p.Len())
	}
	<-done
}
