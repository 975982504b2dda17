package contracts

// RiskLevel is the categorical risk label of an instrument
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Instrument is one fixed-income asset class entry in the portfolio
// ⭐ SSOT: instrument fields are defined here only
type Instrument struct {
	Name              string    `json:"name" yaml:"name"`
	RiskLevel         RiskLevel `json:"risk_level" yaml:"risk_level"`
	RewardPercent     float64   `json:"reward_percent" yaml:"reward_percent"`         // annualized nominal return
	HorizonYears      int       `json:"horizon_years" yaml:"horizon_years"`           // investment tenor
	AllocationPercent float64   `json:"allocation_percent" yaml:"allocation_percent"` // 0 ~ 100
	Purpose           string    `json:"purpose" yaml:"purpose"`
}

// WeightedInstrument pairs an instrument with its contribution to the blended return
type WeightedInstrument struct {
	Instrument
	WeightedReturn float64 `json:"weighted_return"`
}

// TotalAllocation returns the sum of allocation percentages
func TotalAllocation(instruments []Instrument) float64 {
	total := 0.0
	for _, inst := range instruments {
		total += inst.AllocationPercent
	}
	return total
}
