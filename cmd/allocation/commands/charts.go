package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/allocation/internal/chart"
	"github.com/wonny/allocation/internal/contracts"
)

func newChartsCmd(opts *globalOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Write the dashboard charts as PNG files",
		Long: `Renders allocation.png, reward.png and risk-reward.png for the whole
portfolio into the output directory.

Example:
  go run ./cmd/allocation charts --out ./charts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCharts(cmd, opts, outDir)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func runCharts(cmd *cobra.Command, opts *globalOptions, outDir string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := cliLogger(cmd.ErrOrStderr(), opts)

	source, err := newSource(cfg, log)
	if err != nil {
		return err
	}
	d, err := source.Dashboard(contracts.FilterSpec{})
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	renderer := newRenderer(cfg, nil, log)
	files := []struct {
		name   string
		render func(context.Context, *contracts.Dashboard) ([]byte, error)
	}{
		{chart.KindAllocation + ".png", renderer.AllocationPie},
		{chart.KindReward + ".png", renderer.RewardBar},
		{chart.KindRiskReward + ".png", renderer.RiskRewardBar},
	}

	out := cmd.OutOrStdout()
	for i, f := range files {
		img, err := f.render(cmd.Context(), d)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, f.name)
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		PrintProgress(out, "Charts", "Wrote "+path, i+1, len(files))
	}

	return nil
}
