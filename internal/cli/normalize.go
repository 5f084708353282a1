package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "catlab/internal/errors"
	"catlab/internal/exporter"
	"catlab/internal/infrastructure"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	selection runSelection
	Out       string
}

// NormalizeResult is the success payload of the normalize command.
type NormalizeResult struct {
	Instrument string   `json:"instrument"`
	Sources    []string `json:"sources"`
	Samples    int      `json:"samples"`
	FirstTOS   float64  `json:"first_tos_hours"`
	LastTOS    float64  `json:"last_tos_hours"`
	Output     string   `json:"output"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize [run-file.csv]",
		Short: "Parse one raw run into a standardized CSV",
		Long: `Parse one raw gas chromatograph run and write the standardized CSV
(TOS column plus one response-corrected area column per compound).

A single-detector run is the positional CSV argument; a dual-detector run is
the --mid/--back xlsx pair. The standardized file lands in the data/runs
directory unless --out says otherwise.

Examples:
  catlab normalize feed_2024-03-01.csv
  catlab normalize --mid mto-42_mfid.xlsx --back mto-42_bfid.xlsx --instrument HPR`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, opts, args)
		},
	}

	opts.selection.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Out, "out", "", "output file (default runs/<stem>_standardized.csv)")

	return cmd
}

func runNormalize(cmd *cobra.Command, opts *NormalizeOptions, args []string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := opts.environment()
	if err != nil {
		return outputError(formatter, err)
	}
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	parser, err := opts.selection.parser(ctx, env, args)
	if err != nil {
		return outputError(formatter, err)
	}

	run, err := parser.Parse(ctx)
	if err != nil {
		return outputError(formatter, err)
	}

	target := opts.Out
	if target == "" {
		target = "runs/" + exporter.RunFileName(run)
	}
	if err := exporter.NewRunExporter(env.paths).ExportRun(run, target); err != nil {
		return outputError(formatter, apperrors.NewStorageError("failed to write standardized run", err))
	}

	result := NormalizeResult{
		Instrument: run.Instrument,
		Sources:    run.Sources,
		Samples:    run.Len(),
		Output:     exporter.OutputPath(env.paths, target),
	}
	if run.Len() > 0 {
		result.FirstTOS = run.TOS[0]
		result.LastTOS = run.TOS[run.Len()-1]
	}

	return outputNormalizeResult(formatter, result)
}

func outputNormalizeResult(f *OutputFormatter, result NormalizeResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Normalized %d source file(s) into %s\n", len(result.Sources), result.Output)
	fmt.Fprintf(f.Writer, "  Instrument: %s\n", result.Instrument)
	fmt.Fprintf(f.Writer, "  Samples:    %d (TOS %.2f h .. %.2f h)\n", result.Samples, result.FirstTOS, result.LastTOS)
	return nil
}
