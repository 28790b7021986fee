// Package cli implements the habitgrid command line.
package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tOgg1/habitgrid/internal/config"
)

type rootOptions struct {
	configFile string
	dataDir    string
	backend    string
	logLevel   string
	logFormat  string
	today      string
	envFile    string
}

// Execute runs the habitgrid command line.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "habitgrid",
		Short:         "Track daily habits as calendar grids",
		Long:          "habitgrid records daily habit completions and draws them as year, month and week grids.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/habitgrid/config.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "data directory")
	flags.StringVar(&opts.backend, "backend", "", "storage backend (json, sqlite, postgres)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	flags.StringVar(&opts.today, "today", "", "treat this date (YYYY-MM-DD) as today")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before configuration")

	cmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newRenameCmd(opts),
		newToggleCmd(opts),
		newStreakCmd(opts),
		newColorCmd(opts),
		newShowCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

// loadConfig resolves configuration from the dotenv file, config file, environment
// and flags, in increasing precedence.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path := strings.TrimSpace(o.envFile); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	loader := config.NewLoader()
	if o.configFile != "" {
		loader.SetConfigFile(o.configFile)
	}
	overrides := []struct {
		flag  string
		key   string
		value string
	}{
		{"data-dir", "global.data_dir", o.dataDir},
		{"backend", "storage.backend", o.backend},
		{"log-level", "logging.level", o.logLevel},
		{"log-format", "logging.format", o.logFormat},
	}
	for _, ov := range overrides {
		if cmd.Flags().Changed(ov.flag) {
			loader.Set(ov.key, ov.value)
		}
	}
	return loader.Load()
}
