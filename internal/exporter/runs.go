package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"catlab/internal/config"
	"catlab/pkg/contracts/domain"
)

// RunExporter renders standardized runs as CSV files
type RunExporter struct {
	csvWriter *CSVWriter
}

// NewRunExporter creates a new run exporter
func NewRunExporter(paths *config.Paths) *RunExporter {
	return &RunExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportRun writes one standardized run: a TOS column followed by the
// corrected area column of every compound, two decimals throughout.
func (e *RunExporter) ExportRun(run *domain.Run, filePath string) error {
	if run == nil || run.Len() == 0 {
		return fmt.Errorf("run has no samples to export")
	}

	headers := runHeaders(run)
	records := make([][]string, run.Len())
	for i := range records {
		row := make([]string, 0, len(headers))
		row = append(row, formatFloat(run.TOS[i]))
		for _, name := range run.Compounds {
			row = append(row, formatFloat(run.Areas[name][i]))
		}
		records[i] = row
	}

	return e.csvWriter.WriteSimpleCSV(filePath, headers, records)
}

// RunFileName derives the export name from the first source file:
// feed_2024-03-01.csv becomes feed_2024-03-01_standardized.csv.
func RunFileName(run *domain.Run) string {
	base := "run"
	if len(run.Sources) > 0 {
		name := filepath.Base(run.Sources[0])
		base = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return base + "_standardized.csv"
}

func runHeaders(run *domain.Run) []string {
	headers := make([]string, 0, len(run.Compounds)+1)
	headers = append(headers, "TOS (h)")
	headers = append(headers, run.Compounds...)
	return headers
}
