package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/dashboard"
	"github.com/wonny/allocation/internal/portfolio"
	"github.com/wonny/allocation/pkg/logger"
	"github.com/wonny/allocation/pkg/redis"
)

// Source is the live portfolio the handlers read from
type Source interface {
	contracts.SnapshotSource
	Snapshot(spec contracts.FilterSpec) (*portfolio.Portfolio, *contracts.Dashboard, error)
	Reload(ctx context.Context) (bool, error)
}

// ViewCache keeps built dashboards as JSON between requests
type ViewCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardHandler serves the dashboard as JSON, HTML and PNG charts
// ⭐ SSOT: dashboard HTTP handlers live in this struct only
type DashboardHandler struct {
	source Source
	charts contracts.ChartRenderer
	views  ViewCache
	logger *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
// views may be nil, which builds every dashboard on demand.
func NewDashboardHandler(source Source, charts contracts.ChartRenderer, views ViewCache, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		source: source,
		charts: charts,
		views:  views,
		logger: log,
	}
}

// GetDashboard returns every view of the dashboard
// GET /api/dashboard?risk=Low&purpose=...
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	spec := parseFilter(r)
	key := redis.DashboardKey(h.source.Revision(), portfolio.FilterFromSpec(spec).Key())

	if h.views != nil {
		var cached contracts.Dashboard
		found, err := h.views.Get(r.Context(), key, &cached)
		if err != nil {
			h.logger.WithError(err).WithField("key", key).Warn("Dashboard cache read failed")
		}
		if found {
			if !notModified(w, r, cached.Revision) {
				respondJSON(w, http.StatusOK, &cached)
			}
			return
		}
	}

	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}

	if h.views != nil {
		key = redis.DashboardKey(d.Revision, portfolio.FilterFromSpec(spec).Key())
		if err := h.views.Set(r.Context(), key, d, redis.TTLShort); err != nil {
			h.logger.WithError(err).WithField("key", key).Warn("Dashboard cache write failed")
		}
	}
	respondJSON(w, http.StatusOK, d)
}

// GetInstruments returns the instrument table with weighted returns
// GET /api/instruments
func (h *DashboardHandler) GetInstruments(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"revision":    d.Revision,
		"filter":      d.Filter,
		"instruments": d.Table,
	})
}

// GetSummary returns the headline metrics
// GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"revision": d.Revision,
		"filter":   d.Filter,
		"metrics":  d.Metrics,
	})
}

// GetRiskSummary returns per-risk averages over the whole portfolio
// GET /api/risk-summary
func (h *DashboardHandler) GetRiskSummary(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"revision":     d.Revision,
		"risk_summary": d.RiskSummary,
	})
}

// Page renders the HTML dashboard
// GET /
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	p, d, err := h.source.Snapshot(parseFilter(r))
	if err != nil {
		h.respondBuildError(w, r, err)
		return
	}
	if notModified(w, r, d.Revision) {
		return
	}

	var buf bytes.Buffer
	if err := dashboard.RenderHTML(&buf, p, d); err != nil {
		h.logger.WithError(err).Error("Failed to render dashboard page")
		respondError(w, http.StatusInternalServerError, "Failed to render dashboard")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// AllocationChart renders the allocation pie
// GET /api/charts/allocation.png
func (h *DashboardHandler) AllocationChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, h.charts.AllocationPie)
}

// RewardChart renders the reward bar chart
// GET /api/charts/reward.png
func (h *DashboardHandler) RewardChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, h.charts.RewardBar)
}

// RiskRewardChart renders average reward per risk level
// GET /api/charts/risk-reward.png
func (h *DashboardHandler) RiskRewardChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, h.charts.RiskRewardBar)
}

// Reload re-reads the portfolio file immediately
// POST /api/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	changed, err := h.source.Reload(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Manual reload failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"changed":  changed,
		"revision": h.source.Revision(),
	})
}

func (h *DashboardHandler) chart(w http.ResponseWriter, r *http.Request, render func(context.Context, *contracts.Dashboard) ([]byte, error)) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}

	img, err := render(r.Context(), d)
	if err != nil {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Failed to render chart")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// dashboard builds the filtered dashboard and handles ETag revalidation.
// It writes the response itself when ok is false.
func (h *DashboardHandler) dashboard(w http.ResponseWriter, r *http.Request) (*contracts.Dashboard, bool) {
	d, err := h.source.Dashboard(parseFilter(r))
	if err != nil {
		h.respondBuildError(w, r, err)
		return nil, false
	}
	if notModified(w, r, d.Revision) {
		return nil, false
	}
	return d, true
}

func (h *DashboardHandler) respondBuildError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("Failed to build dashboard")
	}
	respondError(w, status, err.Error())
}

// notModified sets the revision ETag and answers 304 when the client already has it.
// Only a dashboard that was built successfully may be revalidated.
func notModified(w http.ResponseWriter, r *http.Request, revision string) bool {
	etag := `"` + revision + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

// parseFilter reads the repeatable risk and purpose query parameters
func parseFilter(r *http.Request) contracts.FilterSpec {
	q := r.URL.Query()

	var spec contracts.FilterSpec
	for _, v := range q["risk"] {
		if v = strings.TrimSpace(v); v != "" {
			spec.RiskLevels = append(spec.RiskLevels, contracts.RiskLevel(v))
		}
	}
	for _, v := range q["purpose"] {
		if v = strings.TrimSpace(v); v != "" {
			spec.Purposes = append(spec.Purposes, v)
		}
	}
	return spec
}
