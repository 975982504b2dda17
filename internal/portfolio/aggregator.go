package portfolio

import (
	"math"

	"github.com/wonny/allocation/internal/contracts"
)

// ComputeWeightedReturns scales every instrument's reward by its share of the
// total allocation. Output order follows input order; the input is not modified.
func ComputeWeightedReturns(instruments []contracts.Instrument) ([]contracts.WeightedInstrument, error) {
	if len(instruments) == 0 {
		return nil, ErrEmptyPortfolio
	}

	total := contracts.TotalAllocation(instruments)
	// !(total > 0) also rejects NaN
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, &InvalidAllocationError{Total: total, Reason: "total allocation must be positive"}
	}

	weighted := make([]contracts.WeightedInstrument, len(instruments))
	for i, inst := range instruments {
		weighted[i] = contracts.WeightedInstrument{
			Instrument:     inst,
			WeightedReturn: inst.RewardPercent * inst.AllocationPercent / total,
		}
	}

	return weighted, nil
}

// WeightedAverage sums the per-instrument weighted returns, which equals the
// allocation-weighted mean reward
func WeightedAverage(weighted []contracts.WeightedInstrument) float64 {
	sum := 0.0
	for _, w := range weighted {
		sum += w.WeightedReturn
	}
	return sum
}

// WeightedAverageReturn is ComputeWeightedReturns followed by WeightedAverage
func WeightedAverageReturn(instruments []contracts.Instrument) (float64, error) {
	weighted, err := ComputeWeightedReturns(instruments)
	if err != nil {
		return 0, err
	}
	return WeightedAverage(weighted), nil
}
