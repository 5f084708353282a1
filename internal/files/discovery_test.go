package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestDiscovery_FindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "feed_01.csv")
	touch(t, dir, "FEED_02.CSV")
	touch(t, dir, "notes.txt")
	touch(t, dir, "feed_01_standardized.csv")
	touch(t, dir, "~$feed_03.csv")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	d := NewDiscovery(dir)
	found, err := d.FindCSVFiles(".")
	require.NoError(t, err)

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"FEED_02.CSV", "feed_01.csv"}, names)
}

func TestDiscovery_FindCSVFiles_MissingDir(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.FindCSVFiles("absent")
	assert.Error(t, err)
}

func TestDiscovery_FindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "mto-42_mfid.xlsx")
	touch(t, dir, "mto-42_bfid.xlsx")
	touch(t, dir, "mth-7.csv")

	d := NewDiscovery(dir)

	found, err := d.FindFilesByPattern(".", "mto-42_*.xlsx")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = d.FindFilesByPattern(".", "[")
	assert.Error(t, err)
}

func TestDiscovery_FindRuns(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "feed_01.csv")
	touch(t, dir, "mto-42_mfid.xlsx")
	touch(t, dir, "mto-42_bfid.xlsx")
	touch(t, dir, "mto-43_mfid.xlsx") // partner missing
	touch(t, dir, "summary.xlsx")     // no detector suffix
	touch(t, dir, "feed_01_standardized.csv")

	d := NewDiscovery(dir)
	runs, unpaired, err := d.FindRuns(".")
	require.NoError(t, err)

	require.Len(t, runs, 2)
	assert.Equal(t, "feed_01", runs[0].Stem)
	assert.Equal(t, RunSingleDetector, runs[0].Kind)
	assert.Equal(t, []string{filepath.Join(dir, "feed_01.csv")}, runs[0].Files)

	assert.Equal(t, "mto-42", runs[1].Stem)
	assert.Equal(t, RunDualDetector, runs[1].Kind)
	assert.Equal(t, []string{
		filepath.Join(dir, "mto-42_mfid.xlsx"),
		filepath.Join(dir, "mto-42_bfid.xlsx"),
	}, runs[1].Files)

	require.Len(t, unpaired, 1)
	assert.Equal(t, "mto-43_mfid.xlsx", unpaired[0].Name)
}

func TestMatchRuns(t *testing.T) {
	runs := []RawRun{
		{Stem: "mto-42", Kind: RunDualDetector},
		{Stem: "mth-7", Kind: RunSingleDetector},
	}

	matched, err := MatchRuns(runs, "mto-*")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "mto-42", matched[0].Stem)

	all, err := MatchRuns(runs, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = MatchRuns(runs, "[")
	assert.Error(t, err)
}

func TestRunsNewerThan(t *testing.T) {
	now := time.Now()
	runs := []RawRun{
		{Stem: "old", ModTime: now.Add(-48 * time.Hour)},
		{Stem: "new", ModTime: now.Add(-1 * time.Hour)},
	}

	kept := RunsNewerThan(runs, now.Add(-24*time.Hour))
	require.Len(t, kept, 1)
	assert.Equal(t, "new", kept[0].Stem)

	assert.Len(t, RunsNewerThan(runs, time.Time{}), 2)
}

func TestLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-time.Minute)},
	}

	latest, ok := LatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)

	_, ok = LatestFile(nil)
	assert.False(t, ok)
}
