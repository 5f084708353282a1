package cli

import (
	"context"

	"github.com/spf13/cobra"

	apperrors "catlab/internal/errors"
	"catlab/internal/instrument"
)

// Default instrument record names. The library ships records under these names
// for the two rigs the lab runs; --instrument overrides them.
const (
	defaultSingleInstrument = "CoFeed"
	defaultDualInstrument   = "HPR"
)

// runSelection holds the flags that pick one raw run: either a single CSV
// export passed as the positional argument, or a dual-detector xlsx pair
// passed as --mid/--back.
type runSelection struct {
	Instrument string
	MidFile    string
	BackFile   string
	Offset     float64
}

func (s *runSelection) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.Instrument, "instrument", "", "instrument record name (default CoFeed for a CSV run, HPR for --mid/--back)")
	cmd.Flags().StringVar(&s.MidFile, "mid", "", "mid-position FID export (xlsx) of a dual-detector run")
	cmd.Flags().StringVar(&s.BackFile, "back", "", "back-position FID export (xlsx) of a dual-detector run")
	cmd.Flags().Float64Var(&s.Offset, "offset", 0, "minutes already on stream before the first sample")
}

// parser resolves the selection into a ready-to-run parser, loading the
// instrument record from the library.
func (s *runSelection) parser(ctx context.Context, env *environment, args []string) (instrument.Instrument, error) {
	switch {
	case len(args) == 1:
		if s.MidFile != "" || s.BackFile != "" {
			return nil, apperrors.NewValidationError("pass either a run file or --mid/--back, not both", nil)
		}
		name := s.Instrument
		if name == "" {
			name = defaultSingleInstrument
		}
		cfg, err := env.library.Instrument(ctx, name)
		if err != nil {
			return nil, err
		}
		return instrument.NewCoFeedRig(args[0], cfg, s.Offset, env.logger), nil

	case s.MidFile != "" && s.BackFile != "":
		name := s.Instrument
		if name == "" {
			name = defaultDualInstrument
		}
		cfg, err := env.library.Instrument(ctx, name)
		if err != nil {
			return nil, err
		}
		return instrument.NewHighPressureRig(s.MidFile, s.BackFile, cfg, s.Offset, env.logger), nil

	default:
		return nil, apperrors.NewValidationError("pass a run file, or both --mid and --back for a dual-detector run", nil)
	}
}
