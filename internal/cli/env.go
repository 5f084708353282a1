package cli

import (
	"log/slog"
	"path/filepath"

	"catlab/internal/config"
	"catlab/internal/infrastructure"
	"catlab/internal/library"
)

// environment bundles everything a command needs once flags are parsed:
// resolved paths, the logger and the record library.
type environment struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	library *library.Store
}

// environment loads configuration, applies the global flags on top and brings
// up the directory layout, logger and record library. Every command calls this
// once at the start of its RunE.
func (o *RootOptions) environment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if o.BaseDir != "" {
		cfg.Paths.ExecutableDir = o.BaseDir
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	// A relative log file lands in the logs directory of the layout, not the
	// working directory.
	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetLogPath(filepath.Base(cfg.Logging.FilePath))
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:     cfg,
		paths:   paths,
		logger:  logger,
		library: library.NewStore(paths, logger),
	}, nil
}
