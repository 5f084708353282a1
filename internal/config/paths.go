package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	ExecutableDir string
	LibraryDir    string
	DataDir       string
	RunsDir       string
	ReportsDir    string
	LogsDir       string

	// Record library subdirectories
	InstrumentsDir string
	ReactionsDir   string
	AntoineDir     string

	// Well-known files
	AntoineFile string
	ArchiveDB   string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are ALWAYS relative to the executable directory, never the current
// working directory, so the tool behaves the same from any shell.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return PathsFrom(filepath.Dir(exe)), nil
}

// PathsFrom builds the default path set rooted at an explicit base directory.
// Tests and configs that set an executable_dir use this instead of GetPaths.
//
// Directory structure:
//
//	base/
//	  ├── catlab.yaml
//	  ├── library/
//	  │   ├── instruments/   (response factor records, <name>.json)
//	  │   ├── reactions/     (reaction records, <name>.json)
//	  │   └── antoine/       (antoine_coef.json)
//	  ├── data/
//	  │   ├── runs/          (instrument run files and standardized exports)
//	  │   ├── reports/       (generated xlsx/csv)
//	  │   └── archive.db     (analysis provenance)
//	  └── logs/
func PathsFrom(base string) *Paths {
	return PathsConfig{}.at(base)
}

// at resolves the configured directory entries against a base directory.
// Empty entries fall back to the defaults; absolute entries are kept as-is.
func (pc PathsConfig) at(base string) *Paths {
	resolve := func(configured, fallback string) string {
		p := configured
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	libraryDir := resolve(pc.LibraryDir, "library")
	dataDir := resolve(pc.DataDir, "data")

	return &Paths{
		ExecutableDir: base,
		LibraryDir:    libraryDir,
		DataDir:       dataDir,
		RunsDir:       filepath.Join(dataDir, "runs"),
		ReportsDir:    filepath.Join(dataDir, "reports"),
		LogsDir:       resolve(pc.LogsDir, "logs"),

		InstrumentsDir: filepath.Join(libraryDir, "instruments"),
		ReactionsDir:   filepath.Join(libraryDir, "reactions"),
		AntoineDir:     filepath.Join(libraryDir, "antoine"),

		AntoineFile: filepath.Join(libraryDir, "antoine", "antoine_coef.json"),
		ArchiveDB:   resolve(pc.ArchiveFile, filepath.Join("data", "archive.db")),
	}
}

// ResolvePaths returns the path set for this configuration. An explicit
// executable_dir wins; otherwise paths root at the real executable directory.
// Relative library/data/logs entries resolve against that root.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.ExecutableDir
	if base == "" {
		resolved, err := GetPaths()
		if err != nil {
			return nil, err
		}
		base = resolved.ExecutableDir
	}
	return c.Paths.at(base), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.LibraryDir,
		p.InstrumentsDir,
		p.ReactionsDir,
		p.AntoineDir,
		p.DataDir,
		p.RunsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetInstrumentPath returns the record file for a named instrument
func (p *Paths) GetInstrumentPath(name string) string {
	return filepath.Join(p.InstrumentsDir, name+".json")
}

// GetReactionPath returns the record file for a named reaction
func (p *Paths) GetReactionPath(name string) string {
	return filepath.Join(p.ReactionsDir, name+".json")
}

// GetRunPath returns the path for a raw run file
func (p *Paths) GetRunPath(filename string) string {
	return filepath.Join(p.RunsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("library", p.LibraryDir),
			slog.String("data", p.DataDir),
			slog.String("runs", p.RunsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("antoine", p.AntoineFile),
			slog.String("archive", p.ArchiveDB),
		))
}
