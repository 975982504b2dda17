package contracts

import "context"

// SnapshotSource hands out the current dashboard for a filter
type SnapshotSource interface {
	Dashboard(f FilterSpec) (*Dashboard, error)
	Revision() string
}

// ChartRenderer renders the chart projections of a dashboard as PNG
type ChartRenderer interface {
	AllocationPie(ctx context.Context, d *Dashboard) ([]byte, error)
	RewardBar(ctx context.Context, d *Dashboard) ([]byte, error)
	RiskRewardBar(ctx context.Context, d *Dashboard) ([]byte, error)
}
