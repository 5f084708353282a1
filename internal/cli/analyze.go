package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"catlab/internal/analysis"
	"catlab/internal/archive"
	apperrors "catlab/internal/errors"
	"catlab/internal/exporter"
	"catlab/internal/infrastructure"
	"catlab/pkg/contracts/domain"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	selection runSelection
	Reaction  string
	Report    string
	CSV       bool
}

// AnalyzeResult is the success payload of the analyze command.
type AnalyzeResult struct {
	Instrument string   `json:"instrument"`
	Reaction   string   `json:"reaction"`
	Sources    []string `json:"sources"`
	Samples    int      `json:"samples"`
	FirstTOS   float64  `json:"first_tos_hours"`
	LastTOS    float64  `json:"last_tos_hours"`
	Report     string   `json:"report"`
	CSVFiles   []string `json:"csv_files,omitempty"`
	ArchiveID  string   `json:"archive_id"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze [run-file.csv]",
		Short: "Parse one run and report conversion, yield and selectivity",
		Long: `Parse one raw run, compute conversion, yield and selectivity against a
reaction record and write the xlsx report. Every analysis is recorded in the
run archive.

The report lands next to the source data unless --report says otherwise;
--csv additionally writes each metric table as a CSV in the reports directory.

Examples:
  catlab analyze feed_2024-03-01.csv --reaction mth
  catlab analyze --mid mto-42_mfid.xlsx --back mto-42_bfid.xlsx --reaction mto --csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	opts.selection.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Reaction, "reaction", "", "reaction record name (required)")
	cmd.Flags().StringVar(&opts.Report, "report", "", "report file (default analysis-<timestamp>.xlsx next to the source)")
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "also write each metric table as CSV")
	_ = cmd.MarkFlagRequired("reaction")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *AnalyzeOptions, args []string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := opts.environment()
	if err != nil {
		return outputError(formatter, err)
	}
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	reaction, err := env.library.Reaction(ctx, opts.Reaction)
	if err != nil {
		return outputError(formatter, err)
	}

	parser, err := opts.selection.parser(ctx, env, args)
	if err != nil {
		return outputError(formatter, err)
	}
	run, err := parser.Parse(ctx)
	if err != nil {
		return outputError(formatter, err)
	}

	result, err := analysis.NewCalculator(env.logger).Analyze(ctx, run, reaction)
	if err != nil {
		return outputError(formatter, err)
	}

	reportPath := opts.Report
	if reportPath == "" {
		reportPath = filepath.Join(filepath.Dir(run.Sources[0]), exporter.DefaultReportName(time.Now()))
	}
	if err := exporter.NewReportWriter(env.logger).Write(reportPath, run, result.ReportTables()); err != nil {
		return outputError(formatter, apperrors.NewStorageError("failed to write report", err))
	}

	var csvFiles []string
	if opts.CSV {
		written, err := exporter.NewTableExporter(env.paths).ExportTables(result.ReportTables(), sourceStem(run.Sources[0]))
		if err != nil {
			return outputError(formatter, apperrors.NewStorageError("failed to write metric CSVs", err))
		}
		for _, name := range written {
			csvFiles = append(csvFiles, exporter.OutputPath(env.paths, name))
		}
	}

	rec := domain.AnalysisRecord{
		Instrument: run.Instrument,
		Reaction:   reaction.Name,
		Sources:    run.Sources,
		Samples:    run.Len(),
		FirstTOS:   run.TOS[0],
		LastTOS:    run.TOS[run.Len()-1],
		ReportPath: reportPath,
	}
	if err := recordAnalysis(cmd, env, &rec); err != nil {
		return outputError(formatter, err)
	}

	return outputAnalyzeResult(formatter, AnalyzeResult{
		Instrument: run.Instrument,
		Reaction:   reaction.Name,
		Sources:    run.Sources,
		Samples:    run.Len(),
		FirstTOS:   rec.FirstTOS,
		LastTOS:    rec.LastTOS,
		Report:     reportPath,
		CSVFiles:   csvFiles,
		ArchiveID:  rec.ID,
	})
}

// recordAnalysis appends one provenance row to the run archive.
func recordAnalysis(cmd *cobra.Command, env *environment, rec *domain.AnalysisRecord) error {
	store, err := archive.Open(env.paths.ArchiveDB)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(infrastructure.EnsureTraceID(cmd.Context()), rec)
}

func outputAnalyzeResult(f *OutputFormatter, result AnalyzeResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Analyzed %s run against reaction %q\n", result.Instrument, result.Reaction)
	fmt.Fprintf(f.Writer, "  Samples: %d (TOS %.2f h .. %.2f h)\n", result.Samples, result.FirstTOS, result.LastTOS)
	fmt.Fprintf(f.Writer, "  Report:  %s\n", result.Report)
	for _, name := range result.CSVFiles {
		fmt.Fprintf(f.Writer, "  CSV:     %s\n", name)
	}
	fmt.Fprintf(f.Writer, "  Archive: %s\n", result.ArchiveID)
	return nil
}

// sourceStem strips the directory and extension from a source file name.
func sourceStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
