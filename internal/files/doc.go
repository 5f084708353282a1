// Package files discovers raw chromatograph exports on disk for batch
// normalization.
//
// A discovered run is either a single co-feed CSV export or a dual-detector
// spreadsheet pair named <stem>_mfid.xlsx and <stem>_bfid.xlsx. Standardized
// CSV exports written by catlab itself and Excel lock files are never picked
// up again.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//
//	runs, unpaired, err := discovery.FindRuns("runs")
//	runs, err = files.MatchRuns(runs, "mto-*")
//	runs = files.RunsNewerThan(runs, time.Now().Add(-72*time.Hour))
package files
