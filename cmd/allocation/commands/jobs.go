package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/allocation/internal/scheduler"
)

func newJobsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run background jobs",
		Long: `Background jobs registered by the dashboard server.

  portfolio_reload     - Re-read the portfolio file (needs --portfolio)
  chart_cache_cleanup  - Evict expired charts from the in-process cache

Example:
  go run ./cmd/allocation jobs list -p portfolio.yaml
  go run ./cmd/allocation jobs run portfolio_reload -p portfolio.yaml
  go run ./cmd/allocation jobs status --server http://localhost:8080`,
	}

	cmd.AddCommand(
		newJobsListCmd(opts),
		newJobsRunCmd(opts),
		newJobsStatusCmd(),
	)
	return cmd
}

func newJobsListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the jobs this configuration registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, closeCache, err := buildScheduler(cmd, opts)
			if err != nil {
				return err
			}
			defer closeCache()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "📋 Registered Jobs:")
			PrintDoubleSeparator(out)
			for _, st := range sched.GetJobStats() {
				PrintKeyValue(out, st.JobName, st.Schedule, 20)
			}
			return nil
		},
	}
}

func newJobsRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [job-name]",
		Short: "Run one job now, with the usual retries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, closeCache, err := buildScheduler(cmd, opts)
			if err != nil {
				return err
			}
			defer closeCache()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🚀 Running job: %s\n", args[0])

			result, err := sched.RunJob(args[0])
			if err != nil {
				return fmt.Errorf("%w (registered: %s)", err, strings.Join(sched.GetAllJobs(), ", "))
			}

			PrintKeyValue(out, "Attempts", fmt.Sprint(result.Attempts), 8)
			PrintKeyValue(out, "Duration", result.Duration.Round(time.Millisecond).String(), 8)
			if !result.Success {
				PrintError(out, fmt.Sprintf("Job %s failed: %s", result.JobName, result.Error))
				return fmt.Errorf("job %s failed", result.JobName)
			}
			PrintSuccess(out, fmt.Sprintf("Job %s completed", result.JobName))
			return nil
		},
	}
}

func newJobsStatusCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show job statistics of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := fetchJobStats(cmd, server)
			if err != nil {
				return err
			}
			printJobStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "dashboard server base URL")
	return cmd
}

// buildScheduler registers the same jobs serve would, without starting cron
func buildScheduler(cmd *cobra.Command, opts *globalOptions) (*scheduler.Scheduler, func() error, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	log := cliLogger(cmd.ErrOrStderr(), opts)

	source, err := newSource(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	cache, _, closeCache, err := newCaches(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}

	sched, err := newScheduler(cfg, source, cache, log)
	if err != nil {
		_ = closeCache()
		return nil, nil, err
	}
	return sched, closeCache, nil
}

func fetchJobStats(cmd *cobra.Command, server string) ([]scheduler.JobStats, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(server, "/")+"/api/jobs", nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query server: %s", resp.Status)
	}

	var body struct {
		Jobs []scheduler.JobStats `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode job stats: %w", err)
	}
	return body.Jobs, nil
}

func printJobStats(w io.Writer, stats []scheduler.JobStats) {
	fmt.Fprintln(w, "📈 Job Statistics:")
	PrintDoubleSeparator(w)

	if len(stats) == 0 {
		fmt.Fprintln(w, "No jobs registered")
		return
	}

	for _, st := range stats {
		fmt.Fprintf(w, "\n📊 %s\n", st.JobName)
		fmt.Fprintf(w, "   Schedule: %s\n", st.Schedule)
		fmt.Fprintf(w, "   Total Runs: %d\n", st.TotalRuns)
		fmt.Fprintf(w, "   Success: %d (%.1f%%)\n", st.SuccessCount, st.SuccessRate*100)
		fmt.Fprintf(w, "   Failures: %d\n", st.FailureCount)

		if st.LastRun != nil {
			fmt.Fprintf(w, "   Last Run: %s\n", st.LastRun.Format("2006-01-02 15:04:05"))
		}
		if st.LastSuccess != nil {
			fmt.Fprintf(w, "   Last Success: %s\n", st.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		if st.LastFailure != nil {
			fmt.Fprintf(w, "   Last Failure: %s\n", st.LastFailure.Format("2006-01-02 15:04:05"))
		}
	}
}
