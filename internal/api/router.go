package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/wonny/allocation/internal/api/handlers"
	"github.com/wonny/allocation/pkg/config"
	"github.com/wonny/allocation/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routes are declared in this function only
func NewRouter(dash *handlers.DashboardHandler, jobs *handlers.JobsHandler, stream http.Handler, limits config.RateLimitConfig, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// HTML dashboard
	r.HandleFunc("/", dash.Page).Methods("GET")

	// Live updates
	r.Handle("/ws", stream).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Dashboard views
	api.HandleFunc("/dashboard", dash.GetDashboard).Methods("GET")
	api.HandleFunc("/instruments", dash.GetInstruments).Methods("GET")
	api.HandleFunc("/summary", dash.GetSummary).Methods("GET")
	api.HandleFunc("/risk-summary", dash.GetRiskSummary).Methods("GET")
	api.HandleFunc("/reload", dash.Reload).Methods("POST")

	// Chart images
	api.HandleFunc("/charts/allocation.png", dash.AllocationChart).Methods("GET")
	api.HandleFunc("/charts/reward.png", dash.RewardChart).Methods("GET")
	api.HandleFunc("/charts/risk-reward.png", dash.RiskRewardChart).Methods("GET")

	// Background jobs
	api.HandleFunc("/jobs", jobs.List).Methods("GET")
	api.HandleFunc("/jobs/{name}/history", jobs.History).Methods("GET")
	api.HandleFunc("/jobs/{name}/run", jobs.Run).Methods("POST")

	api.Use(rateLimitMiddleware(limits, log))

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": logger.ServiceName,
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"query":    r.URL.RawQuery,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies one token bucket to every /api request.
// A zero RPS disables limiting.
func rateLimitMiddleware(limits config.RateLimitConfig, log *logger.Logger) mux.MiddlewareFunc {
	if limits.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := limits.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limits.RPS), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithFields(map[string]interface{}{
					"path":   r.URL.Path,
					"remote": r.RemoteAddr,
				}).Warn("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
