package exporter

import (
	"fmt"
	"strings"

	"catlab/internal/config"
	"catlab/pkg/contracts/domain"
)

// TableExporter renders metric tables as CSV files
type TableExporter struct {
	csvWriter *CSVWriter
}

// NewTableExporter creates a new metric table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportTable writes one metric table: a TOS column followed by one column
// per series. NaN cells are written empty.
func (e *TableExporter) ExportTable(table *domain.Table, filePath string) error {
	if table == nil || table.Empty() {
		return fmt.Errorf("table has no rows to export")
	}

	headers := make([]string, 0, len(table.Columns)+1)
	headers = append(headers, "TOS (h)")
	headers = append(headers, table.ColumnNames()...)

	records := make([][]string, table.Len())
	for i := range records {
		row := make([]string, 0, len(headers))
		row = append(row, formatFloat(table.TOS[i]))
		for _, col := range table.Columns {
			row = append(row, formatCell(col.Values[i]))
		}
		records[i] = row
	}

	return e.csvWriter.WriteSimpleCSV(filePath, headers, records)
}

// ExportTables writes every non-empty table as <stem>_<kind>.csv and returns
// the written file names.
func (e *TableExporter) ExportTables(tables []*domain.Table, stem string) ([]string, error) {
	var written []string
	for _, table := range tables {
		if table == nil || table.Empty() {
			continue
		}
		name := fmt.Sprintf("%s_%s.csv", stem, kindSlug(table.Kind))
		if err := e.ExportTable(table, name); err != nil {
			return written, fmt.Errorf("failed to export %s: %w", table.Kind, err)
		}
		written = append(written, name)
	}
	return written, nil
}

func kindSlug(kind domain.TableKind) string {
	return strings.ReplaceAll(strings.ToLower(string(kind)), " ", "_")
}
