package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"catlab/internal/exporter"
	"catlab/internal/files"
	"catlab/internal/infrastructure"
	"catlab/internal/instrument"
	"catlab/pkg/contracts/domain"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Pattern          string
	NewerThan        time.Duration
	Workers          int
	CoFeedInstrument string
	HPRInstrument    string
	Offset           float64
}

// BatchRunResult is the outcome of one run in a batch.
type BatchRunResult struct {
	Stem    string `json:"stem"`
	Kind    string `json:"kind"`
	Samples int    `json:"samples,omitempty"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResult is the success payload of the batch command.
type BatchResult struct {
	Directory string           `json:"directory"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Unpaired  []string         `json:"unpaired,omitempty"`
	Runs      []BatchRunResult `json:"runs,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch [directory]",
		Short: "Normalize every raw run in a directory",
		Long: `Discover raw runs in a directory and write a standardized CSV next to each
one. CSV files are single-detector runs; xlsx files pair up as dual-detector
runs by the _mfid/_bfid stem suffixes. Runs are independent, so the batch
processes them concurrently; one bad file does not stop the rest.

The directory defaults to the data/runs directory of the layout.

Examples:
  catlab batch
  catlab batch /mnt/gc-exports --pattern 'mto-*' --newer-than 72h`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "glob that run stems must match")
	cmd.Flags().DurationVar(&opts.NewerThan, "newer-than", 0, "only runs modified within this window (e.g. 72h)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent runs (default from config)")
	cmd.Flags().StringVar(&opts.CoFeedInstrument, "cofeed-instrument", defaultSingleInstrument, "instrument record for single-detector runs")
	cmd.Flags().StringVar(&opts.HPRInstrument, "hpr-instrument", defaultDualInstrument, "instrument record for dual-detector runs")
	cmd.Flags().Float64Var(&opts.Offset, "offset", 0, "minutes already on stream before the first sample")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *BatchOptions, args []string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := opts.environment()
	if err != nil {
		return outputError(formatter, err)
	}
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	dir := "runs"
	if len(args) == 1 {
		dir = args[0]
	}

	discovery := files.NewDiscovery(env.paths.DataDir)
	runs, unpaired, err := discovery.FindRuns(dir)
	if err != nil {
		return outputError(formatter, err)
	}
	runs, err = files.MatchRuns(runs, opts.Pattern)
	if err != nil {
		return outputError(formatter, err)
	}
	if opts.NewerThan > 0 {
		runs = files.RunsNewerThan(runs, time.Now().Add(-opts.NewerThan))
	}

	result := BatchResult{
		Directory: dir,
		Total:     len(runs),
	}
	for _, file := range unpaired {
		result.Unpaired = append(result.Unpaired, file.Path)
	}

	configs, err := batchInstruments(ctx, env, opts, runs)
	if err != nil {
		return outputError(formatter, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = env.cfg.Batch.Workers
	}
	formatter.VerboseLog("Normalizing %d run(s) with %d worker(s)", len(runs), workers)

	result.Runs = normalizeRuns(ctx, env, opts, runs, configs, workers)
	for _, r := range result.Runs {
		if r.Error == "" {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	if err := outputBatchResult(formatter, result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d runs failed", result.Failed, result.Total))
	}
	return nil
}

// batchInstruments loads each instrument record the batch will need, once.
func batchInstruments(ctx context.Context, env *environment, opts *BatchOptions, runs []files.RawRun) (map[files.RunKind]*domain.InstrumentConfig, error) {
	configs := make(map[files.RunKind]*domain.InstrumentConfig)
	for _, run := range runs {
		if _, ok := configs[run.Kind]; ok {
			continue
		}
		name := opts.CoFeedInstrument
		if run.Kind == files.RunDualDetector {
			name = opts.HPRInstrument
		}
		cfg, err := env.library.Instrument(ctx, name)
		if err != nil {
			return nil, err
		}
		configs[run.Kind] = cfg
	}
	return configs, nil
}

// normalizeRuns parses and exports every run with bounded concurrency. Runs
// share no mutable state; each worker writes only its own result slot.
func normalizeRuns(ctx context.Context, env *environment, opts *BatchOptions, runs []files.RawRun, configs map[files.RunKind]*domain.InstrumentConfig, workers int) []BatchRunResult {
	results := make([]BatchRunResult, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, run := range runs {
		i, run := i, run
		g.Go(func() error {
			results[i] = normalizeOne(gctx, env, configs[run.Kind], run, opts.Offset)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func normalizeOne(ctx context.Context, env *environment, cfg *domain.InstrumentConfig, run files.RawRun, offset float64) BatchRunResult {
	result := BatchRunResult{Stem: run.Stem, Kind: string(run.Kind)}
	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	var parser instrument.Instrument
	if run.Kind == files.RunDualDetector {
		parser = instrument.NewHighPressureRig(run.Files[0], run.Files[1], cfg, offset, env.logger)
	} else {
		parser = instrument.NewCoFeedRig(run.Files[0], cfg, offset, env.logger)
	}

	parsed, err := parser.Parse(ctx)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// The standardized CSV lands next to the raw files, which keeps batches
	// over external directories self-contained.
	out := filepath.Join(filepath.Dir(run.Files[0]), run.Stem+"_standardized.csv")
	if err := exporter.NewRunExporter(env.paths).ExportRun(parsed, out); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Samples = parsed.Len()
	result.Output = out
	return result
}

func outputBatchResult(f *OutputFormatter, result BatchResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}

	if result.Total == 0 {
		fmt.Fprintf(f.Writer, "No raw runs found in %s\n", result.Directory)
	} else {
		fmt.Fprintf(f.Writer, "Normalized %d of %d run(s) in %s\n", result.Succeeded, result.Total, result.Directory)
	}
	for _, run := range result.Runs {
		if run.Error != "" {
			fmt.Fprintf(f.Writer, "  FAIL %-20s %s\n", run.Stem, run.Error)
			continue
		}
		fmt.Fprintf(f.Writer, "  ok   %-20s %d samples -> %s\n", run.Stem, run.Samples, run.Output)
	}
	if len(result.Unpaired) > 0 {
		fmt.Fprintf(f.Writer, "Skipped %d unpaired detector file(s):\n", len(result.Unpaired))
		for _, path := range result.Unpaired {
			fmt.Fprintf(f.Writer, "  %s\n", path)
		}
	}
	return nil
}
