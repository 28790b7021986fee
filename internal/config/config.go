// Package config handles habitgrid configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config is the root configuration structure for habitgrid.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Storage selects and configures the persistence backend.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Display controls how grids are drawn.
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where habitgrid stores its data (default: ~/.local/share/habitgrid).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Backend is one of json, sqlite, postgres.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// JSONPath is the document file for the json backend (default: DataDir/habits.json).
	JSONPath string `yaml:"json_path" mapstructure:"json_path"`

	// SQLitePath is the database file for the sqlite backend (default: DataDir/habits.db).
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string `yaml:"postgres_url" mapstructure:"postgres_url"`

	// BusyTimeoutMs is how long SQLite waits for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`

	// CommitTimeout bounds a single background commit.
	CommitTimeout time.Duration `yaml:"commit_timeout" mapstructure:"commit_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DisplayConfig contains rendering settings.
type DisplayConfig struct {
	// Theme is the palette name (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// Columns is the year grid width. Zero derives it from the terminal width.
	Columns int `yaml:"columns" mapstructure:"columns"`

	// HabitsFile is the markdown list imported when no habits exist yet. Relative
	// paths are resolved against DataDir.
	HabitsFile string `yaml:"habits_file" mapstructure:"habits_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir: filepath.Join(homeDir, ".local", "share", "habitgrid"),
		},
		Storage: StorageConfig{
			Backend:       BackendJSON,
			BusyTimeoutMs: 5000,
			CommitTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Display: DisplayConfig{
			Theme:      "default",
			HabitsFile: "habits.md",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.Global.DataDir) == "" {
		errs.AddMessage("global.data_dir", "is required")
	}

	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	case BackendPostgres:
		if strings.TrimSpace(c.Storage.PostgresURL) == "" {
			errs.AddMessage("storage.postgres_url", "is required for the postgres backend")
		}
	default:
		errs.AddMessage("storage.backend", fmt.Sprintf("must be one of %s, %s, %s", BackendJSON, BackendSQLite, BackendPostgres))
	}
	if c.Storage.BusyTimeoutMs < 0 {
		errs.AddMessage("storage.busy_timeout_ms", "must not be negative")
	}
	if c.Storage.CommitTimeout < 100*time.Millisecond {
		errs.AddMessage("storage.commit_timeout", "must be at least 100ms")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		errs.AddMessage("logging.level", "must be one of trace, debug, info, warn, error, off")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs.AddMessage("logging.format", "must be console or json")
	}

	if strings.TrimSpace(c.Display.Theme) == "" {
		errs.AddMessage("display.theme", "is required")
	}
	if c.Display.Columns < 0 {
		errs.AddMessage("display.columns", "must not be negative")
	}

	return errs.Err()
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Global.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Global.DataDir, err)
	}
	return nil
}

// JSONPath returns the document path of the json backend.
func (c *Config) JSONPath() string {
	if c.Storage.JSONPath != "" {
		return c.Storage.JSONPath
	}
	return filepath.Join(c.Global.DataDir, "habits.json")
}

// SQLitePath returns the database path of the sqlite backend.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.Global.DataDir, "habits.db")
}

// HabitsFilePath returns the bootstrap habit list path, or "" when none is configured.
func (c *Config) HabitsFilePath() string {
	path := strings.TrimSpace(c.Display.HabitsFile)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Global.DataDir, path)
}
