// Package config provides centralized configuration management for catlab.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for accessing configuration values throughout
// the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (catlab.yaml)
//	3. Default values (lowest priority)
//
// A .env file next to the working directory seeds missing environment
// variables before loading.
//
// # Environment Variables
//
// All environment variables follow the pattern CATLAB_* for namespacing:
//
//	CATLAB_LOGGING_LEVEL=debug
//	CATLAB_LOGGING_OUTPUT=both
//	CATLAB_PATHS_LIBRARY_DIR=/srv/lab/library
//	CATLAB_BATCH_WORKERS=8
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := cfg.ResolvePaths()
//	reactionFile := paths.GetReactionPath("mth")
//	reportFile := paths.GetReportPath("analysis-2026-01-15_101500.xlsx")
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
