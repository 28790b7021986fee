package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HABITGRID"

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Load loads configuration with precedence defaults < config file < env vars.
// CLI flags are applied by the caller through Set.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandPaths(cfg *Config) {
	cfg.Global.DataDir = expandTilde(cfg.Global.DataDir)
	cfg.Storage.JSONPath = expandTilde(cfg.Storage.JSONPath)
	cfg.Storage.SQLitePath = expandTilde(cfg.Storage.SQLitePath)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
	cfg.Display.HabitsFile = expandTilde(cfg.Display.HabitsFile)
}

func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "habitgrid"))
	}
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "habitgrid"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.setDefaults(cfg)

	// Unmarshal only sees env values for keys viper already knows about.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
}

// configKeys lists every key that can be set from a file, the environment or Set.
var configKeys = []string{
	"global.data_dir",
	"storage.backend",
	"storage.json_path",
	"storage.sqlite_path",
	"storage.postgres_url",
	"storage.busy_timeout_ms",
	"storage.commit_timeout",
	"logging.level",
	"logging.format",
	"logging.file",
	"logging.enable_caller",
	"display.theme",
	"display.columns",
	"display.habits_file",
}

func (l *Loader) setDefaults(cfg *Config) {
	v := l.v

	v.SetDefault("global.data_dir", cfg.Global.DataDir)

	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.json_path", cfg.Storage.JSONPath)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.postgres_url", cfg.Storage.PostgresURL)
	v.SetDefault("storage.busy_timeout_ms", cfg.Storage.BusyTimeoutMs)
	v.SetDefault("storage.commit_timeout", cfg.Storage.CommitTimeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.enable_caller", cfg.Logging.EnableCaller)

	v.SetDefault("display.theme", cfg.Display.Theme)
	v.SetDefault("display.columns", cfg.Display.Columns)
	v.SetDefault("display.habits_file", cfg.Display.HabitsFile)
}

// loadConfigFile reads the config file. A missing file is only an error when it was
// set explicitly.
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && l.configFile == "" {
			return nil
		}
		return err
	}
	return nil
}

// ConfigFileUsed returns the config file that was loaded.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Set overrides a key, taking precedence over every other source.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

