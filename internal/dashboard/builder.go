package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/portfolio"
)

// Builder turns a validated portfolio into the dashboard handoff
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a new dashboard builder
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build derives every dashboard view from p restricted to f.
// Aggregation errors (ErrEmptyPortfolio, *InvalidAllocationError) are returned as is.
func (b *Builder) Build(p *portfolio.Portfolio, f portfolio.Filter) (*contracts.Dashboard, error) {
	all := p.Instruments()
	selected := f.Apply(all)

	weighted, err := portfolio.ComputeWeightedReturns(selected)
	if err != nil {
		return nil, err
	}
	avg := portfolio.WeightedAverage(weighted)
	total := contracts.TotalAllocation(selected)

	d := &contracts.Dashboard{
		Title:       p.Title,
		Revision:    p.Revision,
		GeneratedAt: b.now().UTC(),
		Filter:      f.Spec(),
		Table:       weighted,
		Metrics: contracts.Metrics{
			WeightedAverageReturn:  avg,
			WeightedAverageDisplay: FormatPercent(avg),
			TotalAllocation:        total,
			UnallocatedPercent:     unallocated(total),
			RiskLabel:              p.RiskLabel,
			Goal:                   p.Goal,
			DominantRisk:           portfolio.DominantRisk(selected),
			Insight:                portfolio.ClassifyInsight(avg),
		},
		AllocationChart: make([]contracts.ChartPoint, len(selected)),
		RewardChart:     make([]contracts.ChartPoint, len(selected)),
		RiskRewardChart: portfolio.AverageRewardByRisk(selected),
		// the category summary always covers the whole portfolio
		RiskSummary: portfolio.SummarizeByRisk(all),
	}

	for i, inst := range selected {
		d.AllocationChart[i] = contracts.ChartPoint{Label: inst.Name, Value: inst.AllocationPercent}
		d.RewardChart[i] = contracts.ChartPoint{Label: inst.Name, Value: inst.RewardPercent}
	}

	return d, nil
}

// FormatPercent renders v with two decimals and a percent sign.
// Float noise beyond 8 decimals is dropped before rounding half away from zero.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).Round(8).StringFixed(2) + "%"
}

func unallocated(total float64) float64 {
	rest, _ := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(total)).Round(8).Float64()
	if rest < 0 {
		return 0
	}
	return rest
}
