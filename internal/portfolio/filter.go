package portfolio

import (
	"slices"
	"sort"
	"strings"

	"github.com/wonny/allocation/internal/contracts"
)

// Filter narrows the instrument set shown on the dashboard.
// An empty list selects everything for that dimension.
type Filter struct {
	RiskLevels []contracts.RiskLevel
	Purposes   []string
}

// FilterFromSpec converts the wire form of a filter
func FilterFromSpec(spec contracts.FilterSpec) Filter {
	return Filter{RiskLevels: spec.RiskLevels, Purposes: spec.Purposes}
}

// Spec returns the wire form of the filter
func (f Filter) Spec() contracts.FilterSpec {
	return contracts.FilterSpec{RiskLevels: f.RiskLevels, Purposes: f.Purposes}
}

// IsZero reports whether the filter selects every instrument
func (f Filter) IsZero() bool {
	return len(f.RiskLevels) == 0 && len(f.Purposes) == 0
}

// Apply returns the matching instruments in input order
func (f Filter) Apply(instruments []contracts.Instrument) []contracts.Instrument {
	out := make([]contracts.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if len(f.RiskLevels) > 0 && !slices.Contains(f.RiskLevels, inst.RiskLevel) {
			continue
		}
		if len(f.Purposes) > 0 && !slices.Contains(f.Purposes, inst.Purpose) {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// Key is a canonical string for the filter, usable as a cache key
func (f Filter) Key() string {
	if f.IsZero() {
		return ""
	}

	risks := make([]string, len(f.RiskLevels))
	for i, r := range f.RiskLevels {
		risks[i] = string(r)
	}
	sort.Strings(risks)

	purposes := slices.Clone(f.Purposes)
	sort.Strings(purposes)

	return "risk=" + strings.Join(risks, ",") + ";purpose=" + strings.Join(purposes, ",")
}

// RiskLevels returns the distinct risk levels in first-appearance order
func RiskLevels(instruments []contracts.Instrument) []contracts.RiskLevel {
	var levels []contracts.RiskLevel
	for _, inst := range instruments {
		if !slices.Contains(levels, inst.RiskLevel) {
			levels = append(levels, inst.RiskLevel)
		}
	}
	return levels
}

// Purposes returns the distinct purposes in first-appearance order
func Purposes(instruments []contracts.Instrument) []string {
	var purposes []string
	for _, inst := range instruments {
		if !slices.Contains(purposes, inst.Purpose) {
			purposes = append(purposes, inst.Purpose)
		}
	}
	return purposes
}
