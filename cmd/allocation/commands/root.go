package commands

import (
	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand and override the environment
type globalOptions struct {
	portfolioFile string
	mode          string
	verbose       bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "allocation",
		Short: "Fixed-income allocation dashboard",
		Long: `Allocation dashboard CLI

Computes the weighted return of a fixed-income portfolio and renders it
as a web dashboard, a terminal report or PNG charts.

Usage:
  go run ./cmd/allocation [command]

Examples:
  go run ./cmd/allocation serve
  go run ./cmd/allocation summary --risk "Very Low"
  go run ./cmd/allocation charts --out ./charts
  go run ./cmd/allocation validate portfolio.yaml
  go run ./cmd/allocation jobs list`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.portfolioFile, "portfolio", "p", "", "portfolio YAML file (default is PORTFOLIO_FILE or the built-in sample)")
	root.PersistentFlags().StringVar(&opts.mode, "mode", "", "allocation mode: partial|strict (default is ALLOCATION_MODE)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newServeCmd(opts),
		newSummaryCmd(opts),
		newChartsCmd(opts),
		newValidateCmd(opts),
		newJobsCmd(opts),
	)

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
