// Package config provides configuration loading and validation for the
// timefold tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidInterval = errors.New("compaction interval must be positive")
	ErrInvalidWindow   = errors.New("compaction window min must not exceed max")
	ErrNoTrackedFiles  = errors.New("tracked allow-list must not be empty")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Default configuration values.
const (
	defaultInterval = 5 * time.Minute
	defaultVersion  = "dev"
)

// Config holds all configuration for the timefold tools.
type Config struct {
	Tracked    TrackedConfig    `mapstructure:"tracked"`
	Compaction CompactionConfig `mapstructure:"compaction"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Editor     EditorConfig     `mapstructure:"editor"`
}

// TrackedConfig holds the tracked-file allow-list.
type TrackedConfig struct {
	Suffixes []string `mapstructure:"suffixes"`
	Names    []string `mapstructure:"names"`
	Patterns []string `mapstructure:"patterns"`
}

// CompactionConfig holds the default compaction policy.
type CompactionConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MinTime  int64         `mapstructure:"min_time"`
	MaxTime  int64         `mapstructure:"max_time"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EditorConfig identifies the editor whose history is being managed.
type EditorConfig struct {
	// Version stamps entries synthesized by the differ.
	Version string `mapstructure:"version"`
}

// Load reads configuration from file and TIMEFOLD_* environment
// variables. An empty path searches the working directory and
// /etc/timefold for timefold.yaml.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("timefold")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("/etc/timefold")
	}

	viperCfg.SetEnvPrefix("TIMEFOLD")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("tracked.suffixes", []string{".ts", ".js"})
	viperCfg.SetDefault("tracked.names", []string{"manifest.json"})
	viperCfg.SetDefault("tracked.patterns", []string{})

	viperCfg.SetDefault("compaction.interval", defaultInterval)
	viperCfg.SetDefault("compaction.min_time", 0)
	viperCfg.SetDefault("compaction.max_time", 0)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")

	viperCfg.SetDefault("editor.version", defaultVersion)
}

// validate checks the configuration invariants.
func validate(config *Config) error {
	if config.Compaction.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, config.Compaction.Interval)
	}

	if config.Compaction.MaxTime != 0 && config.Compaction.MinTime > config.Compaction.MaxTime {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidWindow,
			config.Compaction.MinTime, config.Compaction.MaxTime)
	}

	if len(config.Tracked.Suffixes)+len(config.Tracked.Names)+len(config.Tracked.Patterns) == 0 {
		return ErrNoTrackedFiles
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	return nil
}
