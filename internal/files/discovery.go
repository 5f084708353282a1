package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Detector suffixes of the high pressure rig exports. One run is the pair
// <stem>_mfid.xlsx (mid detector) plus <stem>_bfid.xlsx (back detector).
const (
	midSuffix  = "_mfid"
	backSuffix = "_bfid"
)

// standardizedSuffix marks our own normalization output. Discovery skips
// those files so a batch run never re-ingests what it wrote.
const standardizedSuffix = "_standardized"

// FileInfo describes one discovered raw file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// RunKind says which parser a discovered run needs.
type RunKind string

const (
	// RunSingleDetector is one co-feed CSV export.
	RunSingleDetector RunKind = "single"
	// RunDualDetector is a mid/back detector spreadsheet pair.
	RunDualDetector RunKind = "dual"
)

// RawRun is one normalizable unit of raw data found on disk.
type RawRun struct {
	Stem    string
	Kind    RunKind
	Files   []string // single: the CSV; dual: mid file then back file
	ModTime time.Time
}

// Discovery locates raw run files under a base directory. Relative directory
// arguments resolve against the base.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery instance rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVFiles returns the CSV files in dir, sorted by name. Standardized
// exports and spreadsheet lock files are skipped.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.findByExt(dir, ".csv")
}

// FindSpreadsheetFiles returns the xlsx files in dir, sorted by name.
func (d *Discovery) FindSpreadsheetFiles(dir string) ([]FileInfo, error) {
	return d.findByExt(dir, ".xlsx")
}

// FindFilesByPattern returns the files in dir whose name matches the glob
// pattern.
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	entries, err := d.list(dir)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, file := range entries {
		ok, err := filepath.Match(pattern, file.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			files = append(files, file)
		}
	}
	return files, nil
}

// FindRuns pairs up everything normalizable in dir: every CSV export is a
// single-detector run, every mid/back spreadsheet pair is a dual-detector
// run. The second return lists detector files whose partner is missing;
// those cannot be parsed alone and the caller should report them.
func (d *Discovery) FindRuns(dir string) ([]RawRun, []FileInfo, error) {
	csvs, err := d.FindCSVFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	sheets, err := d.FindSpreadsheetFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	var runs []RawRun
	for _, file := range csvs {
		runs = append(runs, RawRun{
			Stem:    stem(file.Name),
			Kind:    RunSingleDetector,
			Files:   []string{file.Path},
			ModTime: file.ModTime,
		})
	}

	type pair struct {
		mid, back *FileInfo
	}
	pairs := make(map[string]*pair)
	for i := range sheets {
		file := &sheets[i]
		name := stem(file.Name)
		var key string
		switch {
		case strings.HasSuffix(strings.ToLower(name), midSuffix):
			key = name[:len(name)-len(midSuffix)]
			p := pairs[key]
			if p == nil {
				p = &pair{}
				pairs[key] = p
			}
			p.mid = file
		case strings.HasSuffix(strings.ToLower(name), backSuffix):
			key = name[:len(name)-len(backSuffix)]
			p := pairs[key]
			if p == nil {
				p = &pair{}
				pairs[key] = p
			}
			p.back = file
		default:
			// A spreadsheet without a detector suffix is not part of a run.
		}
	}

	var unpaired []FileInfo
	for key, p := range pairs {
		if p.mid == nil || p.back == nil {
			if p.mid != nil {
				unpaired = append(unpaired, *p.mid)
			}
			if p.back != nil {
				unpaired = append(unpaired, *p.back)
			}
			continue
		}
		mod := p.mid.ModTime
		if p.back.ModTime.After(mod) {
			mod = p.back.ModTime
		}
		runs = append(runs, RawRun{
			Stem:    key,
			Kind:    RunDualDetector,
			Files:   []string{p.mid.Path, p.back.Path},
			ModTime: mod,
		})
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Stem < runs[j].Stem })
	sort.Slice(unpaired, func(i, j int) bool { return unpaired[i].Name < unpaired[j].Name })

	return runs, unpaired, nil
}

// MatchRuns keeps the runs whose stem matches the glob pattern. An empty
// pattern keeps everything.
func MatchRuns(runs []RawRun, pattern string) ([]RawRun, error) {
	if pattern == "" {
		return runs, nil
	}
	var matched []RawRun
	for _, run := range runs {
		ok, err := filepath.Match(pattern, run.Stem)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, run)
		}
	}
	return matched, nil
}

// RunsNewerThan keeps the runs whose newest file was modified after the
// cutoff. A zero cutoff keeps everything.
func RunsNewerThan(runs []RawRun, cutoff time.Time) []RawRun {
	if cutoff.IsZero() {
		return runs
	}
	var kept []RawRun
	for _, run := range runs {
		if run.ModTime.After(cutoff) {
			kept = append(kept, run)
		}
	}
	return kept
}

// LatestFile returns the most recently modified file from a list.
func LatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// findByExt lists the files in dir carrying the extension, sorted by name.
func (d *Discovery) findByExt(dir, ext string) ([]FileInfo, error) {
	entries, err := d.list(dir)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, file := range entries {
		if strings.EqualFold(filepath.Ext(file.Name), ext) {
			files = append(files, file)
		}
	}
	return files, nil
}

// list reads one directory, keeping only regular files worth considering.
func (d *Discovery) list(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// "~$" files are Excel's lock files for open workbooks.
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(stem(name)), standardizedSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
