package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/allocation/internal/portfolio"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps portfolio faults to 422, everything else to 500
func statusFor(err error) int {
	var (
		verr portfolio.ValidationError
		perr *portfolio.ParseError
	)
	switch {
	case errors.Is(err, portfolio.ErrEmptyPortfolio),
		errors.Is(err, portfolio.ErrInvalidAllocation),
		errors.As(err, &verr),
		errors.As(err, &perr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
