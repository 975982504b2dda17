package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/portfolio"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty portfolio", portfolio.ErrEmptyPortfolio, http.StatusUnprocessableEntity},
		{"invalid allocation", &portfolio.InvalidAllocationError{Total: 0, Reason: "total allocation must be positive"}, http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("load x: %w", portfolio.ValidationError{Field: "instruments[0].name", Message: "required"}), http.StatusUnprocessableEntity},
		{"malformed document", fmt.Errorf("parse portfolio x: %w", &portfolio.ParseError{Err: errors.New("cannot unmarshal")}), http.StatusUnprocessableEntity},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard?risk=Low&risk=+High+&risk=&purpose=Gold", nil)

	spec := parseFilter(r)
	assert.Equal(t, []contracts.RiskLevel{contracts.RiskLow, contracts.RiskHigh}, spec.RiskLevels)
	assert.Equal(t, []string{"Gold"}, spec.Purposes)

	empty := parseFilter(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Nil(t, empty.RiskLevels)
	assert.Nil(t, empty.Purposes)
}
