// Package exporter writes standardized runs and derived metric tables to disk.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// RunExporter and TableExporter: Render a standardized run or a metric table
// as CSV, one row per retained injection. Undefined metric cells are written
// empty.
//
// ReportWriter: Builds the xlsx analysis report with the raw run on the first
// sheet and a charted sheet per non-empty metric table.
//
// Example usage:
//
//	// Export a standardized run
//	runs := exporter.NewRunExporter(paths)
//	err := runs.ExportRun(run, "runs/"+exporter.RunFileName(run))
//
//	// Export every metric table from an analysis
//	tables := exporter.NewTableExporter(paths)
//	written, err := tables.ExportTables(result.ReportTables(), "mto-run42")
//
//	// Render the xlsx report
//	report := exporter.NewReportWriter(logger)
//	err = report.Write(path, result.Run, result.ReportTables())
package exporter
