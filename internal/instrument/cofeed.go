package instrument

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

// OpenLab writes sample times as "YYYYMMDD HHMMSS" with a three character
// sequence suffix that is stripped before parsing.
const cofeedTimeLayout = "20060102 150405"

// cofeedMetaColumns is the number of non-area columns preceding the compound
// areas in each data row: the sample time plus two injection metadata cells.
const cofeedMetaColumns = 3

// CoFeedRig parses the single-detector CSV export of the co-feed rig.
//
// The export carries the compound names in the first row (from the second
// cell on), two header rows before the data and two trailing information
// rows. Rows without a sample time are artifacts of the export and are
// dropped.
type CoFeedRig struct {
	datafile      string
	config        *domain.InstrumentConfig
	offsetMinutes float64
	logger        *slog.Logger
}

// NewCoFeedRig creates a parser for one co-feed rig export. offsetMinutes is
// the delay between feed start and the first GC injection; zero means the
// first sample defines time zero.
func NewCoFeedRig(datafile string, config *domain.InstrumentConfig, offsetMinutes float64, logger *slog.Logger) *CoFeedRig {
	return &CoFeedRig{
		datafile:      datafile,
		config:        config,
		offsetMinutes: offsetMinutes,
		logger:        ensureLogger(logger).With(slog.String("component", "cofeed_parser")),
	}
}

// InstrumentName returns the calibration record name.
func (r *CoFeedRig) InstrumentName() string {
	if r.config == nil {
		return ""
	}
	return r.config.Name
}

// SourceFiles returns the raw export path.
func (r *CoFeedRig) SourceFiles() []string {
	return []string{r.datafile}
}

// Parse reads the CSV export and produces a standardized run.
func (r *CoFeedRig) Parse(ctx context.Context) (*domain.Run, error) {
	if r.config == nil {
		return nil, missingConfigErr("co-feed")
	}

	file, err := os.Open(r.datafile)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open raw file %s", r.datafile), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read raw file %s", r.datafile), err)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("raw file is empty", nil)
	}

	compounds, err := r.headerCompounds(rows[0])
	if err != nil {
		return nil, err
	}

	// The first two rows are headers; of what remains, rows without a sample
	// time are dropped first, then the two trailing information rows.
	var data [][]string
	if len(rows) > 2 {
		for _, row := range rows[2:] {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			data = append(data, row)
		}
	}
	if len(data) < 2 {
		return nil, apperrors.NewParsingError("raw file has no data rows", nil)
	}
	data = data[:len(data)-2]

	var (
		seconds []float64
		columns = make(map[string][]float64, len(compounds))
	)

	for _, row := range data {
		ts, ok := r.parseSampleTime(ctx, row[0])
		if !ok {
			continue
		}

		seconds = append(seconds, ts)
		for j, name := range compounds {
			var cell string
			if idx := cofeedMetaColumns + j; idx < len(row) {
				cell = row[idx]
			}
			v, ok := parseAreaCell(cell)
			if !ok {
				r.logger.DebugContext(ctx, "non-numeric area cell read as zero",
					slog.String("compound", name),
					slog.String("cell", cell))
				v = 0
			}
			columns[name] = append(columns[name], v)
		}
	}

	tos := elapsedHours(seconds, r.offsetMinutes)

	return finalizeRun(ctx, r.logger, r.config.Name, r.SourceFiles(),
		tos, compounds, columns, r.config.ResponseFactors)
}

// headerCompounds extracts the lower-cased compound names from the first row.
// The first cell is the time column label; trailing empty cells are the
// export's padding.
func (r *CoFeedRig) headerCompounds(header []string) ([]string, error) {
	var compounds []string
	seen := make(map[string]bool)
	for _, cell := range header[1:] {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, apperrors.NewParsingError(fmt.Sprintf("duplicate compound column %q", name), nil)
		}
		seen[name] = true
		compounds = append(compounds, name)
	}
	if len(compounds) == 0 {
		return nil, apperrors.NewParsingError("raw file header has no compound names", nil)
	}
	return compounds, nil
}

// parseSampleTime converts one raw time cell to Unix seconds. The cell ends
// with a three character suffix that is not part of the timestamp.
func (r *CoFeedRig) parseSampleTime(ctx context.Context, cell string) (float64, bool) {
	raw := strings.TrimSpace(cell)
	if len(raw) <= 3 {
		r.logger.DebugContext(ctx, "dropped row with malformed sample time",
			slog.String("cell", cell))
		return 0, false
	}
	ts, err := time.Parse(cofeedTimeLayout, raw[:len(raw)-3])
	if err != nil {
		r.logger.DebugContext(ctx, "dropped row with unparseable sample time",
			slog.String("cell", cell),
			slog.String("error", err.Error()))
		return 0, false
	}
	return float64(ts.Unix()), true
}
