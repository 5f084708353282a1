package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"catlab/internal/archive"
	"catlab/internal/infrastructure"
	"catlab/pkg/contracts/domain"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit    int
	Reaction string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List archived analyses, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum rows to list")
	cmd.Flags().StringVar(&opts.Reaction, "reaction", "", "only analyses of this reaction")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	env, err := opts.environment()
	if err != nil {
		return outputError(formatter, err)
	}
	ctx := infrastructure.EnsureTraceID(cmd.Context())

	store, err := archive.Open(env.paths.ArchiveDB)
	if err != nil {
		return outputError(formatter, err)
	}
	defer store.Close()

	var records []domain.AnalysisRecord
	if opts.Reaction != "" {
		records, err = store.ByReaction(ctx, opts.Reaction, opts.Limit)
	} else {
		records, err = store.List(ctx, opts.Limit)
	}
	if err != nil {
		return outputError(formatter, err)
	}

	return outputHistory(formatter, records)
}

func outputHistory(f *OutputFormatter, records []domain.AnalysisRecord) error {
	if f.Format == "json" {
		if records == nil {
			records = []domain.AnalysisRecord{}
		}
		return f.Success(map[string][]domain.AnalysisRecord{"analyses": records})
	}

	if len(records) == 0 {
		fmt.Fprintln(f.Writer, "No archived analyses")
		return nil
	}

	fmt.Fprintf(f.Writer, "%-8s  %-19s  %-10s  %-12s  %7s  %-17s\n",
		"ID", "CREATED", "INSTRUMENT", "REACTION", "SAMPLES", "TOS (h)")
	for _, rec := range records {
		fmt.Fprintf(f.Writer, "%-8s  %-19s  %-10s  %-12s  %7d  %6.2f .. %6.2f\n",
			shortID(rec.ID),
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Instrument,
			rec.Reaction,
			rec.Samples,
			rec.FirstTOS,
			rec.LastTOS)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
