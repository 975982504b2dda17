package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/allocation/internal/dashboard"
	"github.com/wonny/allocation/internal/portfolio"
)

func newValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a portfolio file",
		Long: `Loads and validates a portfolio YAML file and prints its revision,
content hash and totals. Exits non-zero when the file is invalid.

Example:
  go run ./cmd/allocation validate portfolio.yaml
  go run ./cmd/allocation validate portfolio.yaml --mode strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}
}

func runValidate(cmd *cobra.Command, opts *globalOptions, path string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := cliLogger(cmd.ErrOrStderr(), opts)
	out := cmd.OutOrStdout()

	constructor, err := newConstructor(cfg, log)
	if err != nil {
		return err
	}

	p, err := constructor.LoadFile(path)
	if err != nil {
		PrintError(out, err.Error())
		return err
	}

	avg, err := portfolio.WeightedAverageReturn(p.Instruments())
	if err != nil {
		PrintError(out, err.Error())
		return err
	}

	PrintDoubleSeparator(out)
	PrintKeyValue(out, "File", path, 12)
	PrintKeyValue(out, "Mode", string(p.Mode), 12)
	PrintKeyValue(out, "Revision", p.Revision, 12)
	PrintKeyValue(out, "Hash", p.Hash, 12)
	PrintKeyValue(out, "Instruments", strconv.Itoa(p.Len()), 12)
	PrintKeyValue(out, "Allocated", dashboard.FormatPercent(p.TotalAllocation()), 12)
	PrintKeyValue(out, "Weighted", dashboard.FormatPercent(avg), 12)
	PrintDoubleSeparator(out)
	PrintSuccess(out, fmt.Sprintf("%s is valid", path))

	return nil
}
