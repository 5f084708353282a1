package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNormalizesDirectory(t *testing.T) {
	base := setupBase(t)
	runsDir := filepath.Join(base, "data", "runs")
	writeCoFeedCSV(t, runsDir, "feed_a.csv")
	writeCoFeedCSV(t, runsDir, "feed_b.csv")

	out, err := execute(t, "batch", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized 2 of 2 run(s)")
	assert.FileExists(t, filepath.Join(runsDir, "feed_a_standardized.csv"))
	assert.FileExists(t, filepath.Join(runsDir, "feed_b_standardized.csv"))
}

func TestBatchSkipsStandardizedExports(t *testing.T) {
	base := setupBase(t)
	runsDir := filepath.Join(base, "data", "runs")
	writeCoFeedCSV(t, runsDir, "feed.csv")

	_, err := execute(t, "batch", "--base", base)
	require.NoError(t, err)

	// The second pass must not treat the export as a new raw run.
	out, err := execute(t, "batch", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized 1 of 1 run(s)")
	assert.NotContains(t, out, "standardized_standardized")
}

func TestBatchContinuesPastFailures(t *testing.T) {
	base := setupBase(t)
	runsDir := filepath.Join(base, "data", "runs")
	writeCoFeedCSV(t, runsDir, "good.csv")
	require.NoError(t, os.WriteFile(filepath.Join(runsDir, "bad.csv"), []byte("Sample Time,\n"), 0o644))

	out, err := execute(t, "batch", "--base", base)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Normalized 1 of 2 run(s)")
	assert.Contains(t, out, "FAIL bad")
	assert.FileExists(t, filepath.Join(runsDir, "good_standardized.csv"))
}

func TestBatchPatternFilter(t *testing.T) {
	base := setupBase(t)
	runsDir := filepath.Join(base, "data", "runs")
	writeCoFeedCSV(t, runsDir, "mto-1.csv")
	writeCoFeedCSV(t, runsDir, "mth-1.csv")

	out, err := execute(t, "batch", "--pattern", "mto-*", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized 1 of 1 run(s)")
	assert.FileExists(t, filepath.Join(runsDir, "mto-1_standardized.csv"))
	assert.NoFileExists(t, filepath.Join(runsDir, "mth-1_standardized.csv"))
}

func TestBatchReportsUnpairedDetectorFiles(t *testing.T) {
	base := setupBase(t)
	runsDir := filepath.Join(base, "data", "runs")
	writeCoFeedCSV(t, runsDir, "feed.csv")
	require.NoError(t, os.WriteFile(filepath.Join(runsDir, "mto-1_mfid.xlsx"), []byte("x"), 0o644))

	out, err := execute(t, "batch", "--base", base)
	require.NoError(t, err, "an unpaired file is a warning, not a failure")
	assert.Contains(t, out, "Skipped 1 unpaired detector file(s)")
	assert.Contains(t, out, "mto-1_mfid.xlsx")
}

func TestBatchEmptyDirectory(t *testing.T) {
	base := setupBase(t)

	out, err := execute(t, "batch", "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "No raw runs found")
}

func TestBatchExplicitDirectory(t *testing.T) {
	base := setupBase(t)
	external := t.TempDir()
	writeCoFeedCSV(t, external, "ext.csv")

	out, err := execute(t, "batch", external, "--base", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized 1 of 1 run(s)")
	assert.FileExists(t, filepath.Join(external, "ext_standardized.csv"))
}

func TestBatchJSON(t *testing.T) {
	base := setupBase(t)
	writeCoFeedCSV(t, filepath.Join(base, "data", "runs"), "feed.csv")

	out, err := execute(t, "batch", "--format", "json", "--base", base)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, float64(1), dataField(t, resp, "total"))
	assert.Equal(t, float64(1), dataField(t, resp, "succeeded"))
	assert.Equal(t, float64(0), dataField(t, resp, "failed"))
}
