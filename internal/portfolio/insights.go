package portfolio

import (
	"sort"

	"github.com/wonny/allocation/internal/contracts"
)

// Insight thresholds on the weighted average return, in percent
const (
	BalancedThreshold   = 8.0
	AggressiveThreshold = 12.0
)

// ClassifyInsight maps a weighted average return to an insight
func ClassifyInsight(avg float64) contracts.Insight {
	switch {
	case avg < BalancedThreshold:
		return contracts.Insight{Level: "conservative", Message: "Your portfolio is conservative with stable but moderate returns."}
	case avg < AggressiveThreshold:
		return contracts.Insight{Level: "balanced", Message: "Your portfolio has a balanced mix of safety and growth."}
	default:
		return contracts.Insight{Level: "aggressive", Message: "Your portfolio is aggressive; expect higher risk and return volatility."}
	}
}

// SummarizeByRisk returns mean reward and mean allocation per risk level,
// ordered by risk label
func SummarizeByRisk(instruments []contracts.Instrument) []contracts.RiskSummary {
	summaries := groupByRisk(instruments)
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].RiskLevel < summaries[j].RiskLevel })
	return summaries
}

// groupByRisk averages per risk level in first-appearance order
func groupByRisk(instruments []contracts.Instrument) []contracts.RiskSummary {
	index := make(map[contracts.RiskLevel]int)
	var summaries []contracts.RiskSummary

	for _, inst := range instruments {
		i, ok := index[inst.RiskLevel]
		if !ok {
			i = len(summaries)
			index[inst.RiskLevel] = i
			summaries = append(summaries, contracts.RiskSummary{RiskLevel: inst.RiskLevel})
		}
		s := &summaries[i]
		s.Instruments++
		s.AvgRewardPercent += inst.RewardPercent
		s.AvgAllocationPercent += inst.AllocationPercent
	}

	for i := range summaries {
		n := float64(summaries[i].Instruments)
		summaries[i].AvgRewardPercent /= n
		summaries[i].AvgAllocationPercent /= n
	}
	return summaries
}

// AverageRewardByRisk returns mean reward per risk level, lowest first
func AverageRewardByRisk(instruments []contracts.Instrument) []contracts.ChartPoint {
	summaries := SummarizeByRisk(instruments)
	points := make([]contracts.ChartPoint, len(summaries))
	for i, s := range summaries {
		points[i] = contracts.ChartPoint{Label: string(s.RiskLevel), Value: s.AvgRewardPercent}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value < points[j].Value })
	return points
}

// DominantRisk returns the most frequent risk level; ties go to the level seen first
func DominantRisk(instruments []contracts.Instrument) contracts.RiskLevel {
	var dominant contracts.RiskLevel
	best := 0
	for _, s := range groupByRisk(instruments) {
		if s.Instruments > best {
			best = s.Instruments
			dominant = s.RiskLevel
		}
	}
	return dominant
}
