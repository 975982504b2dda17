package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/allocation/internal/api"
	"github.com/wonny/allocation/internal/api/handlers"
	"github.com/wonny/allocation/internal/realtime"
	"github.com/wonny/allocation/pkg/logger"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Starts the HTTP dashboard server.

Endpoints:
  GET  /health                      - Health check
  GET  /                            - HTML dashboard
  GET  /api/dashboard               - Full dashboard JSON
  GET  /api/instruments             - Instrument table
  GET  /api/summary                 - Headline metrics
  GET  /api/risk-summary            - Averages per risk level
  GET  /api/charts/allocation.png   - Allocation pie
  GET  /api/charts/reward.png       - Reward bar chart
  GET  /api/charts/risk-reward.png  - Average reward per risk
  POST /api/reload                  - Re-read the portfolio file
  GET  /api/jobs                    - Background job statistics
  GET  /api/jobs/{name}/history     - Recent runs of one job
  POST /api/jobs/{name}/run         - Run one job now
  GET  /ws                          - Live dashboard events

Every dashboard endpoint accepts repeated risk= and purpose= filters.

Example:
  go run ./cmd/allocation serve
  go run ./cmd/allocation serve --port 9000 --portfolio ./portfolio.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "HTTP port (default is PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *globalOptions, port string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port":      cfg.Port,
		"env":       cfg.Env,
		"portfolio": cfg.Portfolio.File,
		"mode":      cfg.Portfolio.AllocationMode,
	}).Info("Initializing dashboard server")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Portfolio snapshot
	source, err := newSource(cfg, log)
	if err != nil {
		return err
	}

	// 2. Live updates
	hub := realtime.NewHub(log, source.SnapshotEvent)
	source.SetPublisher(hub)

	// 3. Charts and cached views
	cache, views, closeCache, err := newCaches(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()
	renderer := newRenderer(cfg, cache, log)

	// 4. Background jobs
	sched, err := newScheduler(cfg, source, cache, log)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// 5. HTTP
	dash := handlers.NewDashboardHandler(source, renderer, views, log)
	jobsHandler := handlers.NewJobsHandler(sched, log)
	router := api.NewRouter(dash, jobsHandler, http.HandlerFunc(hub.ServeWS), cfg.RateLimit, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Dashboard running on http://localhost:%s (revision %s)", cfg.Port, source.Revision()))
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.WithField("clients", hub.Clients()).Info("Shutting down server...")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
