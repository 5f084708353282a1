package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Batch   BatchConfig   `yaml:"batch" envconfig:"BATCH"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"file"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/catlab.log"`
}

// PathsConfig contains file system paths configuration. Relative entries are
// resolved against the executable directory by the Paths type.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	LibraryDir    string `yaml:"library_dir" envconfig:"LIBRARY_DIR" default:"library"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	ArchiveFile   string `yaml:"archive_file" envconfig:"ARCHIVE_FILE" default:"data/archive.db"`
}

// BatchConfig controls batch normalization
type BatchConfig struct {
	Workers int `yaml:"workers" envconfig:"WORKERS" default:"4"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	// A .env next to the binary or in the working directory overrides nothing,
	// it only seeds missing variables.
	_ = godotenv.Load()

	var cfg Config

	if err := envconfig.Process("CATLAB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// envconfig fills defaults, so a field still holding its default is replaced
// by an explicit file value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()

	if envConfig.Logging.Level == def.Logging.Level && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == def.Logging.Output && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == def.Logging.FilePath && fileConfig.Logging.FilePath != "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.LibraryDir == def.Paths.LibraryDir && fileConfig.Paths.LibraryDir != "" {
		envConfig.Paths.LibraryDir = fileConfig.Paths.LibraryDir
	}
	if envConfig.Paths.DataDir == def.Paths.DataDir && fileConfig.Paths.DataDir != "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Paths.LogsDir == def.Paths.LogsDir && fileConfig.Paths.LogsDir != "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if envConfig.Paths.ArchiveFile == def.Paths.ArchiveFile && fileConfig.Paths.ArchiveFile != "" {
		envConfig.Paths.ArchiveFile = fileConfig.Paths.ArchiveFile
	}
	if envConfig.Batch.Workers == def.Batch.Workers && fileConfig.Batch.Workers > 0 {
		envConfig.Batch.Workers = fileConfig.Batch.Workers
	}

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Logging.Format != "json" {
		// Log output is always JSON; the format knob exists for the config
		// file schema only.
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "file", "both", "stdout", "stderr":
	default:
		c.Logging.Output = "file"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/catlab.log"
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch workers must be positive, got %d", c.Batch.Workers)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"catlab.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: "logs/catlab.log",
		},
		Paths: PathsConfig{
			LibraryDir:  "library",
			DataDir:     "data",
			LogsDir:     "logs",
			ArchiveFile: "data/archive.db",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}
