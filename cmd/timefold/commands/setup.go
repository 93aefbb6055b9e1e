// Package commands implements the timefold CLI commands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/timefold/pkg/config"
	"github.com/Sumatoshi-tech/timefold/pkg/observability"
	"github.com/Sumatoshi-tech/timefold/pkg/tracked"
)

const serviceName = "timefold"

// setup loads the configuration honoring the root command's persistent
// flags and builds the service logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}

	logger := observability.NewLogger(serviceName, cfg.Logging.Level, cfg.Logging.Format)

	return cfg, logger, nil
}

// trackedSet builds the tracked-file allow-list from the configuration.
func trackedSet(cfg *config.Config) *tracked.Set {
	return tracked.New(cfg.Tracked.Suffixes, cfg.Tracked.Names, cfg.Tracked.Patterns)
}
