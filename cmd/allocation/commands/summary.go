package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/allocation/internal/contracts"
	"github.com/wonny/allocation/internal/dashboard"
)

type summaryOptions struct {
	risks    []string
	purposes []string
	raw      bool
	style    string
}

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	so := &summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard as a terminal report",
		Long: `Prints the instrument table, weighted average return, insight and
risk summary of the portfolio.

Example:
  go run ./cmd/allocation summary
  go run ./cmd/allocation summary --risk "Very Low" --risk Low
  go run ./cmd/allocation summary --purpose "Regular monthly income" --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts, so)
		},
	}

	// StringArray keeps commas inside purposes intact
	cmd.Flags().StringArrayVar(&so.risks, "risk", nil, "only include this risk level (repeatable)")
	cmd.Flags().StringArrayVar(&so.purposes, "purpose", nil, "only include this purpose (repeatable)")
	cmd.Flags().BoolVar(&so.raw, "raw", false, "print markdown without terminal styling")
	cmd.Flags().StringVar(&so.style, "style", "auto", "terminal style: auto|dark|light|notty")

	return cmd
}

func runSummary(cmd *cobra.Command, opts *globalOptions, so *summaryOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := cliLogger(cmd.ErrOrStderr(), opts)

	source, err := newSource(cfg, log)
	if err != nil {
		return err
	}

	spec := contracts.FilterSpec{Purposes: so.purposes}
	for _, r := range so.risks {
		spec.RiskLevels = append(spec.RiskLevels, contracts.RiskLevel(r))
	}

	d, err := source.Dashboard(spec)
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}

	md, err := dashboard.RenderMarkdown(d)
	if err != nil {
		return err
	}

	out := md
	if !so.raw {
		if out, err = dashboard.RenderTerminal(md, so.style); err != nil {
			return err
		}
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
