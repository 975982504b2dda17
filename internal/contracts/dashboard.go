package contracts

import "time"

// ChartPoint is one labelled value of a chart projection
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Insight classifies the blended return of a portfolio
type Insight struct {
	Level   string `json:"level"` // conservative, balanced, aggressive
	Message string `json:"message"`
}

// RiskSummary aggregates instruments sharing a risk level
type RiskSummary struct {
	RiskLevel            RiskLevel `json:"risk_level"`
	Instruments          int       `json:"instruments"`
	AvgRewardPercent     float64   `json:"avg_reward_percent"`
	AvgAllocationPercent float64   `json:"avg_allocation_percent"`
}

// Metrics are the summary figures shown above the table
type Metrics struct {
	WeightedAverageReturn  float64   `json:"weighted_average_return"`
	WeightedAverageDisplay string    `json:"weighted_average_display"` // two decimals, e.g. "7.23%"
	TotalAllocation        float64   `json:"total_allocation"`
	UnallocatedPercent     float64   `json:"unallocated_percent"`
	RiskLabel              string    `json:"risk_label"`
	Goal                   string    `json:"goal"`
	DominantRisk           RiskLevel `json:"dominant_risk"`
	Insight                Insight   `json:"insight"`
}

// Dashboard is everything the presentation layer needs for one render
// ⭐ SSOT: aggregator → rendering handoff
type Dashboard struct {
	Title           string               `json:"title"`
	Revision        string               `json:"revision"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Filter          FilterSpec           `json:"filter"`
	Table           []WeightedInstrument `json:"table"`
	Metrics         Metrics              `json:"metrics"`
	AllocationChart []ChartPoint         `json:"allocation_chart"`  // pie: name → allocation
	RewardChart     []ChartPoint         `json:"reward_chart"`      // bar: name → reward
	RiskRewardChart []ChartPoint         `json:"risk_reward_chart"` // bar: risk → mean reward
	RiskSummary     []RiskSummary        `json:"risk_summary"`
}

// FilterSpec echoes the filter a dashboard was built with
type FilterSpec struct {
	RiskLevels []RiskLevel `json:"risk_levels,omitempty"`
	Purposes   []string    `json:"purposes,omitempty"`
}

// DashboardEvent is pushed to live subscribers when the portfolio changes
type DashboardEvent struct {
	Type      string     `json:"type"` // snapshot, reloaded, error
	Revision  string     `json:"revision"`
	Error     string     `json:"error,omitempty"`
	Dashboard *Dashboard `json:"dashboard,omitempty"`
}

const (
	EventSnapshot = "snapshot"
	EventReloaded = "reloaded"
	EventError    = "error"
)
