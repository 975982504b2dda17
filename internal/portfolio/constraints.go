package portfolio

import "fmt"

// AllocationMode decides whether allocations must cover the whole portfolio
type AllocationMode string

const (
	// ModePartial accepts totals in (0, 100]; the rest is reported as unallocated
	ModePartial AllocationMode = "partial"
	// ModeStrict requires allocations to sum to exactly 100
	ModeStrict AllocationMode = "strict"
)

// ParseAllocationMode converts a config value to an AllocationMode
func ParseAllocationMode(s string) (AllocationMode, error) {
	switch AllocationMode(s) {
	case ModePartial, ModeStrict:
		return AllocationMode(s), nil
	case "":
		return ModePartial, nil
	default:
		return "", fmt.Errorf("unknown allocation mode %q", s)
	}
}

// Constraints defines the rules a portfolio must satisfy at load time
// ⭐ SSOT: allocation rules live here only
type Constraints struct {
	Mode      AllocationMode
	Tolerance float64 // slack on the 100% comparison, in percentage points
}

// DefaultConstraints returns the constraints used when nothing is configured
func DefaultConstraints() Constraints {
	return Constraints{
		Mode:      ModePartial,
		Tolerance: 1e-6,
	}
}

// checkTotal applies the mode to an allocation total
func (c Constraints) checkTotal(total float64) error {
	if !(total > 0) {
		return &InvalidAllocationError{Total: total, Reason: "total allocation must be positive"}
	}
	if total > 100+c.Tolerance {
		return &InvalidAllocationError{Total: total, Reason: "allocations exceed 100%"}
	}
	if c.Mode == ModeStrict && total < 100-c.Tolerance {
		return &InvalidAllocationError{Total: total, Reason: "strict mode requires allocations to sum to 100%"}
	}
	return nil
}
