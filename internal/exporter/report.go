package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"catlab/pkg/contracts/domain"
)

// chartAnchor places each metric chart to the right of the data columns.
const chartAnchor = "K2"

// ReportWriter renders an analysis into a workbook: the standardized run on a
// "Raw Data" sheet, then one sheet per non-empty metric table with a line
// chart over the time index.
type ReportWriter struct {
	logger *slog.Logger
}

// NewReportWriter creates an xlsx report writer.
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{logger: logger.With(slog.String("component", "report"))}
}

// DefaultReportName names a report after the moment of analysis, for example
// analysis-2024-03-01_154500.xlsx.
func DefaultReportName(now time.Time) string {
	return fmt.Sprintf("analysis-%s.xlsx", now.Format("2006-01-02_150405"))
}

// Write renders the workbook at path, creating parent directories as needed.
func (w *ReportWriter) Write(path string, run *domain.Run, tables []*domain.Table) error {
	if run == nil || run.Len() == 0 {
		return fmt.Errorf("report requires a run with samples")
	}

	f := excelize.NewFile()
	defer f.Close()

	rawSheet := string(domain.TableRawData)
	if err := f.SetSheetName(f.GetSheetName(0), rawSheet); err != nil {
		return fmt.Errorf("failed to name sheet %s: %w", rawSheet, err)
	}
	if err := writeRunSheet(f, rawSheet, run); err != nil {
		return err
	}

	sheets := 1
	for _, table := range tables {
		if table == nil || table.Empty() {
			continue
		}
		name := string(table.Kind)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
		if err := writeTableSheet(f, name, table); err != nil {
			return err
		}
		if err := addMetricChart(f, name, table); err != nil {
			return fmt.Errorf("failed to chart %s: %w", name, err)
		}
		sheets++
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	w.logger.Info("analysis report written",
		slog.String("path", path),
		slog.Int("sheets", sheets))

	return nil
}

func writeRunSheet(f *excelize.File, sheet string, run *domain.Run) error {
	if err := setCell(f, sheet, 1, 1, "TOS"); err != nil {
		return err
	}
	for c, name := range run.Compounds {
		if err := setCell(f, sheet, c+2, 1, name); err != nil {
			return err
		}
	}
	for i := 0; i < run.Len(); i++ {
		if err := setCell(f, sheet, 1, i+2, run.TOS[i]); err != nil {
			return err
		}
		for c, name := range run.Compounds {
			if err := setCell(f, sheet, c+2, i+2, run.Areas[name][i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTableSheet(f *excelize.File, sheet string, table *domain.Table) error {
	if err := setCell(f, sheet, 1, 1, "TOS"); err != nil {
		return err
	}
	for c, col := range table.Columns {
		if err := setCell(f, sheet, c+2, 1, col.Name); err != nil {
			return err
		}
	}
	for i := 0; i < table.Len(); i++ {
		if err := setCell(f, sheet, 1, i+2, table.TOS[i]); err != nil {
			return err
		}
		for c, col := range table.Columns {
			// Undefined metric cells stay empty.
			if math.IsNaN(col.Values[i]) {
				continue
			}
			if err := setCell(f, sheet, c+2, i+2, col.Values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// addMetricChart draws a line chart over every column of the sheet: square
// markers, TOS on the x axis and the metric name on the y axis.
func addMetricChart(f *excelize.File, sheet string, table *domain.Table) error {
	lastRow := table.Len() + 1
	series := make([]excelize.ChartSeries, 0, len(table.Columns))
	for i := range table.Columns {
		colName, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheet, colName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, lastRow),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, colName, colName, lastRow),
			Marker: excelize.ChartMarker{
				Symbol: "square",
				Size:   5,
			},
		})
	}

	xmin := 0.0
	return f.AddChart(sheet, chartAnchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		XAxis: excelize.ChartAxis{
			Title:   []excelize.RichTextRun{{Text: "TOS (h)"}},
			Minimum: &xmin,
		},
		YAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: sheet + " (%)"}},
		},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 580,
		},
	})
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
