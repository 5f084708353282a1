package exporter

import (
	"fmt"
	"math"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	// Always format with exactly 2 decimal places for consistency
	// This ensures values like 13.4 appear as 13.40 in CSV
	return fmt.Sprintf("%.2f", f)
}

// formatCell formats a metric value; undefined metrics (NaN) render as an
// empty cell, matching how the xlsx report shows them.
func formatCell(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return formatFloat(f)
}
