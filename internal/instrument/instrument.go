package instrument

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

// Instrument is the capability a rig parser provides: turning its raw export
// files into a standardized run.
type Instrument interface {
	// InstrumentName returns the library record the parser calibrates with.
	InstrumentName() string
	// SourceFiles returns the raw files the parser reads.
	SourceFiles() []string
	// Parse reads the raw export and produces a standardized run.
	Parse(ctx context.Context) (*domain.Run, error)
}

// parseAreaCell converts one numeric cell to a float. Empty cells read as
// zero. The second return is false for a non-empty cell that is not a number;
// callers log and zero those.
func parseAreaCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// roundTo rounds to the given number of decimal places. NaN passes through.
func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) {
		return v
	}
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}

// finalizeRun applies the steps every parser shares: response-factor
// division, clipping stray negatives to zero, two-decimal rounding and
// dropping rows that would break the strictly increasing time index.
func finalizeRun(ctx context.Context, logger *slog.Logger, instrument string, sources []string,
	tos []float64, compounds []string, areas map[string][]float64,
	factors map[string]float64) (*domain.Run, error) {

	if len(tos) == 0 {
		return nil, apperrors.NewParsingError("no data rows after cleaning", nil)
	}

	for name, factor := range factors {
		col, ok := areas[name]
		if !ok {
			logger.DebugContext(ctx, "response factor names a compound the run does not carry",
				slog.String("compound", name))
			continue
		}
		for i := range col {
			col[i] /= factor
		}
	}

	clipped := 0
	for _, name := range compounds {
		col := areas[name]
		for i := range col {
			if col[i] < 0 {
				col[i] = 0
				clipped++
			}
			col[i] = roundTo(col[i], 2)
		}
	}
	if clipped > 0 {
		logger.DebugContext(ctx, "clipped negative areas to zero",
			slog.Int("cells", clipped))
	}

	for i := range tos {
		tos[i] = roundTo(tos[i], 2)
	}

	// Rounding can collapse close injections onto the same index value.
	// Later rows that do not advance the index are dropped.
	keep := make([]int, 0, len(tos))
	last := math.Inf(-1)
	for i, t := range tos {
		if t <= last {
			continue
		}
		keep = append(keep, i)
		last = t
	}
	if dropped := len(tos) - len(keep); dropped > 0 {
		logger.WarnContext(ctx, "dropped rows that do not advance the time index",
			slog.Int("rows", dropped))
		tosKept := make([]float64, len(keep))
		for j, i := range keep {
			tosKept[j] = tos[i]
		}
		tos = tosKept
		for name, col := range areas {
			colKept := make([]float64, len(keep))
			for j, i := range keep {
				colKept[j] = col[i]
			}
			areas[name] = colKept
		}
	}

	run := &domain.Run{
		Instrument: instrument,
		Sources:    sources,
		TOS:        tos,
		Compounds:  compounds,
		Areas:      areas,
	}

	if err := run.Validate(); err != nil {
		return nil, apperrors.NewParsingError("standardized run failed validation", err)
	}

	logger.InfoContext(ctx, "standardized run built",
		slog.String("instrument", instrument),
		slog.Int("samples", run.Len()),
		slog.Int("compounds", len(run.Compounds)),
		slog.Float64("first_tos", run.TOS[0]),
		slog.Float64("last_tos", run.TOS[run.Len()-1]))

	return run, nil
}

// elapsedHours converts absolute sample times to hours elapsed since the
// first sample, rounded to two decimals, plus an optional feed-start offset
// in minutes.
func elapsedHours(seconds []float64, offsetMinutes float64) []float64 {
	out := make([]float64, len(seconds))
	if len(seconds) == 0 {
		return out
	}
	first := seconds[0]
	for i, s := range seconds {
		out[i] = roundTo((s-first)/3600, 2)
		if offsetMinutes != 0 {
			out[i] += offsetMinutes / 60
		}
	}
	return out
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func missingConfigErr(kind string) error {
	return apperrors.NewConfigError(fmt.Sprintf("%s parser requires an instrument record", kind), nil)
}
