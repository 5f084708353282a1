package instrument

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "catlab/internal/errors"
	"catlab/pkg/contracts/domain"
)

const (
	// Sentinel row labels framing the data block in each detector export.
	hprBlockStart = "Array 1"
	hprBlockEnd   = "Mean"

	// Detector exports prefix every compound header with a five character
	// detector tag ("MFID ", "BFID ").
	hprDetectorPrefixLen = 5

	hprTimeLayout = "02/01/2006 15:04:05"

	// aromaticsColumn is the derived lump: whatever total detector area the
	// named compounds do not account for.
	aromaticsColumn = "aromatics"
)

// HighPressureRig parses the dual-FID spreadsheet exports of the high
// pressure rig, one file per detector, and joins them into a single run.
//
// Each export carries its data between an "Array 1" and a "Mean" summary row.
// Injections with a run time at or below the instrument's cutoff are reactor
// bypass measurements and are dropped. The rows arrive newest first and are
// reversed into chronological order before the time index is built.
type HighPressureRig struct {
	midFile       string
	backFile      string
	config        *domain.InstrumentConfig
	offsetMinutes float64
	logger        *slog.Logger
}

// detectorTable is one cleaned detector export before joining.
type detectorTable struct {
	source    string
	times     []string
	compounds []string
	rows      [][]float64 // row-major, aligned with compounds
	totals    []float64
}

// NewHighPressureRig creates a parser over the mid and back detector exports.
func NewHighPressureRig(midFile, backFile string, config *domain.InstrumentConfig, offsetMinutes float64, logger *slog.Logger) *HighPressureRig {
	return &HighPressureRig{
		midFile:       midFile,
		backFile:      backFile,
		config:        config,
		offsetMinutes: offsetMinutes,
		logger:        ensureLogger(logger).With(slog.String("component", "highpressure_parser")),
	}
}

// InstrumentName returns the calibration record name.
func (r *HighPressureRig) InstrumentName() string {
	if r.config == nil {
		return ""
	}
	return r.config.Name
}

// SourceFiles returns the two detector export paths, mid first.
func (r *HighPressureRig) SourceFiles() []string {
	return []string{r.midFile, r.backFile}
}

// Parse reads both detector exports and produces a standardized run.
func (r *HighPressureRig) Parse(ctx context.Context) (*domain.Run, error) {
	if r.config == nil {
		return nil, missingConfigErr("high pressure")
	}

	mid, err := r.readDetector(ctx, r.midFile)
	if err != nil {
		return nil, err
	}
	back, err := r.readDetector(ctx, r.backFile)
	if err != nil {
		return nil, err
	}

	return r.join(ctx, mid, back)
}

// readDetector extracts the cleaned data block from one detector export.
func (r *HighPressureRig) readDetector(ctx context.Context, path string) (*detectorTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open detector file %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("detector file %s has no sheets", path), nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q of %s", sheets[0], path), err)
	}

	start, end := -1, -1
	for i, row := range rows {
		switch strings.TrimSpace(cellAt(row, 0)) {
		case hprBlockStart:
			if start < 0 {
				start = i
			}
		case hprBlockEnd:
			if start >= 0 && end < 0 {
				end = i
			}
		}
	}
	if start < 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sentinel row %q not found in %s", hprBlockStart, path), nil)
	}
	if end < 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sentinel row %q not found in %s", hprBlockEnd, path), nil)
	}

	block := rows[start+1 : end]
	if len(block) < 2 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no data rows between sentinels in %s", path), nil)
	}

	// The block's first column holds row labels; headers start one cell in.
	header := block[0]
	type column struct {
		rawIdx int
		name   string
	}
	var kept []column
	for i := 1; i < len(header); i++ {
		name := strings.TrimSpace(header[i])
		if name == "" || strings.HasPrefix(name, "Time") {
			continue
		}
		kept = append(kept, column{rawIdx: i, name: name})
	}

	runTimeIdx := -1
	var cols []column
	for _, c := range kept {
		switch c.name {
		case "Run Time":
			runTimeIdx = c.rawIdx
		case "Acquisition Method Name":
			// metadata, not data
		default:
			cols = append(cols, c)
		}
	}
	if runTimeIdx < 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no Run Time column in %s", path), nil)
	}
	if len(cols) < 2 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no compound columns in %s", path), nil)
	}

	// First kept column is the injection time, last is the detector total,
	// the rest are compounds named by stripping the detector tag.
	table := &detectorTable{source: path}
	timeIdx := cols[0].rawIdx
	totalIdx := cols[len(cols)-1].rawIdx
	seen := make(map[string]bool)
	compoundIdx := make([]int, 0, len(cols)-2)
	for _, c := range cols[1 : len(cols)-1] {
		name := c.name
		if len(name) > hprDetectorPrefixLen {
			name = name[hprDetectorPrefixLen:]
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			return nil, apperrors.NewParsingError(fmt.Sprintf("duplicate or empty compound column %q in %s", c.name, path), nil)
		}
		seen[name] = true
		table.compounds = append(table.compounds, name)
		compoundIdx = append(compoundIdx, c.rawIdx)
	}

	cutoff := r.config.RunTimeCutoff()
	for _, row := range block[1:] {
		runTime, ok := parseAreaCell(cellAt(row, runTimeIdx))
		if !ok {
			r.logger.DebugContext(ctx, "dropped row with unreadable run time",
				slog.String("file", path),
				slog.String("cell", cellAt(row, runTimeIdx)))
			continue
		}
		if runTime <= cutoff {
			r.logger.DebugContext(ctx, "dropped bypass injection",
				slog.String("file", path),
				slog.Float64("run_time", runTime))
			continue
		}

		ts := strings.TrimSpace(cellAt(row, timeIdx))
		if ts == "" {
			r.logger.DebugContext(ctx, "dropped row without injection time",
				slog.String("file", path))
			continue
		}

		values := make([]float64, len(compoundIdx))
		for j, idx := range compoundIdx {
			v, ok := parseAreaCell(cellAt(row, idx))
			if !ok {
				r.logger.DebugContext(ctx, "non-numeric area cell read as zero",
					slog.String("file", path),
					slog.String("compound", table.compounds[j]),
					slog.String("cell", cellAt(row, idx)))
				v = 0
			}
			values[j] = v
		}
		total, ok := parseAreaCell(cellAt(row, totalIdx))
		if !ok {
			r.logger.DebugContext(ctx, "non-numeric total area read as zero",
				slog.String("file", path),
				slog.String("cell", cellAt(row, totalIdx)))
			total = 0
		}

		table.times = append(table.times, ts)
		table.rows = append(table.rows, values)
		table.totals = append(table.totals, total)
	}

	if len(table.times) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("no retained injections in %s", path), nil)
	}

	r.logger.DebugContext(ctx, "detector table cleaned",
		slog.String("file", path),
		slog.Int("injections", len(table.times)),
		slog.Int("compounds", len(table.compounds)))

	return table, nil
}

// join combines the two detector tables side by side, derives the aromatics
// lump from the unaccounted total area and builds the time index.
func (r *HighPressureRig) join(ctx context.Context, mid, back *detectorTable) (*domain.Run, error) {
	n := len(mid.times)
	if len(back.times) != n {
		if len(back.times) < n {
			n = len(back.times)
		}
		r.logger.WarnContext(ctx, "detector exports have different injection counts, joining the overlap",
			slog.Int("mid", len(mid.times)),
			slog.Int("back", len(back.times)),
			slog.Int("joined", n))
	}

	for _, name := range back.compounds {
		for _, existing := range mid.compounds {
			if name == existing {
				return nil, apperrors.NewParsingError(fmt.Sprintf("compound %q reported by both detectors", name), nil)
			}
		}
	}

	compounds := make([]string, 0, len(mid.compounds)+len(back.compounds)+1)
	compounds = append(compounds, mid.compounds...)
	compounds = append(compounds, back.compounds...)
	for _, name := range compounds {
		if name == aromaticsColumn {
			return nil, apperrors.NewParsingError(fmt.Sprintf("detector column %q collides with the derived lump", name), nil)
		}
	}
	compounds = append(compounds, aromaticsColumn)

	// Raw exports list the newest injection first.
	var (
		seconds []float64
		kept    []int
	)
	for i := n - 1; i >= 0; i-- {
		ts, err := time.Parse(hprTimeLayout, mid.times[i])
		if err != nil {
			r.logger.DebugContext(ctx, "dropped row with unparseable injection time",
				slog.String("cell", mid.times[i]),
				slog.String("error", err.Error()))
			continue
		}
		seconds = append(seconds, float64(ts.Unix()))
		kept = append(kept, i)
	}
	if len(kept) == 0 {
		return nil, apperrors.NewParsingError("no rows with a readable injection time", nil)
	}

	areas := make(map[string][]float64, len(compounds))
	for _, name := range compounds {
		areas[name] = make([]float64, len(kept))
	}

	for out, i := range kept {
		var named float64
		for j, name := range mid.compounds {
			v := mid.rows[i][j]
			areas[name][out] = v
			named += v
		}
		for j, name := range back.compounds {
			v := back.rows[i][j]
			areas[name][out] = v
			named += v
		}
		total := mid.totals[i] + back.totals[i]
		areas[aromaticsColumn][out] = roundTo(total-named, 1)
	}

	tos := elapsedHours(seconds, r.offsetMinutes)

	return finalizeRun(ctx, r.logger, r.config.Name, r.SourceFiles(),
		tos, compounds, areas, r.config.ResponseFactors)
}

// cellAt reads a cell from a possibly short row.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
