package portfolio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/pkg/ids"
	"github.com/wonny/allocation/pkg/logger"
)

// Portfolio is a validated, immutable instrument set
type Portfolio struct {
	Title     string
	RiskLabel string
	Goal      string
	Intro     string // markdown shown above the dashboard
	Revision  string
	Hash      string
	Mode      AllocationMode
	LoadedAt  time.Time

	instruments []contracts.Instrument
}

// Instruments returns a copy of the instrument set
func (p *Portfolio) Instruments() []contracts.Instrument {
	out := make([]contracts.Instrument, len(p.instruments))
	copy(out, p.instruments)
	return out
}

// Len returns the number of instruments
func (p *Portfolio) Len() int {
	return len(p.instruments)
}

// TotalAllocation returns the sum of allocations
func (p *Portfolio) TotalAllocation() float64 {
	return contracts.TotalAllocation(p.instruments)
}

// Constructor validates raw documents into portfolios
// ⭐ SSOT: the only place a Portfolio is created
type Constructor struct {
	constraints Constraints
	logger      *logger.Logger
	now         func() time.Time
}

// NewConstructor creates a new portfolio constructor
func NewConstructor(constraints Constraints, log *logger.Logger) *Constructor {
	if constraints.Tolerance <= 0 {
		constraints.Tolerance = DefaultConstraints().Tolerance
	}
	if constraints.Mode == "" {
		constraints.Mode = ModePartial
	}
	return &Constructor{
		constraints: constraints,
		logger:      log,
		now:         time.Now,
	}
}

// Construct validates doc and returns an immutable Portfolio.
// Fails with ErrEmptyPortfolio, ValidationError or *InvalidAllocationError.
func (c *Constructor) Construct(doc *Document) (*Portfolio, error) {
	if doc == nil || len(doc.Instruments) == 0 {
		return nil, ErrEmptyPortfolio
	}

	seen := make(map[string]bool, len(doc.Instruments))
	for i, inst := range doc.Instruments {
		if err := validateInstrument(i, inst); err != nil {
			return nil, err
		}
		if seen[inst.Name] {
			return nil, ValidationError{fmt.Sprintf("instruments[%d].name", i), fmt.Sprintf("duplicate name %q", inst.Name)}
		}
		seen[inst.Name] = true
	}

	total := contracts.TotalAllocation(doc.Instruments)
	if err := c.constraints.checkTotal(total); err != nil {
		return nil, err
	}

	hash, err := Hash(doc)
	if err != nil {
		return nil, fmt.Errorf("hash portfolio: %w", err)
	}

	loadedAt := c.now()
	instruments := make([]contracts.Instrument, len(doc.Instruments))
	copy(instruments, doc.Instruments)

	p := &Portfolio{
		Title:       doc.Title,
		RiskLabel:   doc.RiskLabel,
		Goal:        doc.Goal,
		Intro:       doc.Intro,
		Revision:    ids.NewRevisionAt(loadedAt),
		Hash:        hash,
		Mode:        c.constraints.Mode,
		LoadedAt:    loadedAt,
		instruments: instruments,
	}

	c.logger.WithFields(map[string]interface{}{
		"revision":         p.Revision,
		"instruments":      len(instruments),
		"total_allocation": total,
		"mode":             string(p.Mode),
	}).Info("Portfolio constructed")

	return p, nil
}

// LoadFile reads, parses and validates a YAML portfolio
func (c *Constructor) LoadFile(path string) (*Portfolio, error) {
	doc, _, err := Load(path)
	if err != nil {
		return nil, err
	}
	return c.Construct(doc)
}

// LoadDefault validates the embedded sample portfolio
func (c *Constructor) LoadDefault() (*Portfolio, error) {
	doc, err := DefaultDocument()
	if err != nil {
		return nil, err
	}
	return c.Construct(doc)
}

func validateInstrument(i int, inst contracts.Instrument) error {
	field := func(name string) string { return fmt.Sprintf("instruments[%d].%s", i, name) }

	if strings.TrimSpace(inst.Name) == "" {
		return ValidationError{field("name"), "required"}
	}
	if inst.RiskLevel == "" {
		return ValidationError{field("risk_level"), "required"}
	}
	if !isFinite(inst.RewardPercent) || inst.RewardPercent < 0 {
		return ValidationError{field("reward_percent"), "must be a finite value >= 0"}
	}
	if inst.HorizonYears <= 0 {
		return ValidationError{field("horizon_years"), "must be > 0"}
	}
	if !isFinite(inst.AllocationPercent) || inst.AllocationPercent < 0 || inst.AllocationPercent > 100 {
		return ValidationError{field("allocation_percent"), "must be in [0, 100]"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
