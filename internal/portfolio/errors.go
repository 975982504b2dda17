package portfolio

import (
	"errors"
	"fmt"
)

// ErrEmptyPortfolio is returned when there is nothing to aggregate
var ErrEmptyPortfolio = errors.New("portfolio has no instruments")

// ErrInvalidAllocation matches every *InvalidAllocationError through errors.Is
var ErrInvalidAllocation = errors.New("invalid allocation")

// InvalidAllocationError reports an allocation total the aggregator cannot divide by,
// or one that breaks the configured allocation mode
type InvalidAllocationError struct {
	Total  float64
	Reason string
}

func (e *InvalidAllocationError) Error() string {
	return fmt.Sprintf("invalid allocation: total %.4f%%: %s", e.Total, e.Reason)
}

func (e *InvalidAllocationError) Is(target error) bool {
	return target == ErrInvalidAllocation
}

// ValidationError rejects a single instrument field at construction time
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseError wraps a malformed or mistyped portfolio document
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed portfolio document: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
