package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"catlab/internal/infrastructure"
	"catlab/pkg/contracts/domain"
)

// InstrumentView is the JSON shape of one instrument record in CLI output.
type InstrumentView struct {
	Name            string             `json:"name"`
	ResponseFactors map[string]float64 `json:"response_factors"`
	MinRunTime      float64            `json:"min_run_time"`
}

// NewInstrumentsCommand creates the instruments command group.
func NewInstrumentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instruments",
		Short: "Inspect instrument calibration records",
	}

	cmd.AddCommand(newInstrumentsListCommand(rootOpts))
	cmd.AddCommand(newInstrumentsShowCommand(rootOpts))

	return cmd
}

func newInstrumentsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List instrument record names",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd, rootOpts)

			env, err := rootOpts.environment()
			if err != nil {
				return outputError(formatter, err)
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())

			names, err := env.library.ListInstruments(ctx)
			if err != nil {
				return outputError(formatter, err)
			}
			return outputNameList(formatter, "instruments", names)
		},
	}
}

func newInstrumentsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <name>",
		Short:         "Show one instrument record",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd, rootOpts)

			env, err := rootOpts.environment()
			if err != nil {
				return outputError(formatter, err)
			}
			ctx := infrastructure.EnsureTraceID(cmd.Context())

			cfg, err := env.library.Instrument(ctx, args[0])
			if err != nil {
				return outputError(formatter, err)
			}
			return outputInstrument(formatter, cfg)
		},
	}
}

func outputInstrument(f *OutputFormatter, cfg *domain.InstrumentConfig) error {
	if f.Format == "json" {
		return f.Success(InstrumentView{
			Name:            cfg.Name,
			ResponseFactors: cfg.ResponseFactors,
			MinRunTime:      cfg.RunTimeCutoff(),
		})
	}

	compounds := make([]string, 0, len(cfg.ResponseFactors))
	for name := range cfg.ResponseFactors {
		compounds = append(compounds, name)
	}
	sort.Strings(compounds)

	fmt.Fprintf(f.Writer, "Instrument: %s\n", cfg.Name)
	fmt.Fprintf(f.Writer, "  Run time cutoff: %.0f min\n", cfg.RunTimeCutoff())
	fmt.Fprintln(f.Writer, "  Response factors:")
	for _, name := range compounds {
		fmt.Fprintf(f.Writer, "    %-20s %g\n", name, cfg.ResponseFactors[name])
	}
	return nil
}
