package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the optional per-project config file, without extension.
const FileName = ".ai-guards"

// EnvPrefix prefixes environment overrides, e.g. AI_GUARDS_LOG_LEVEL.
const EnvPrefix = "AI_GUARDS"

// Config represents the ai-guards configuration
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Plans PlansConfig `mapstructure:"plans"`
	Watch WatchConfig `mapstructure:"watch"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlansConfig represents plan generation defaults
type PlansConfig struct {
	Folder string `mapstructure:"folder"`
	Author string `mapstructure:"author"`
}

// WatchConfig represents `rules sync --watch` configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load loads the configuration from .ai-guards.yaml in dir, or from file
// when it is non-empty. A missing config file is not an error.
func Load(dir, file string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("plans.folder", ".plans")
	v.SetDefault("plans.author", "ai-guards")
	v.SetDefault("watch.debounce", 200*time.Millisecond)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if dir != "" {
			v.AddConfigPath(dir)
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json', got: %s", cfg.Log.Format)
	}

	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got: %s", cfg.Watch.Debounce)
	}

	if cfg.Plans.Folder == "" || filepath.IsAbs(cfg.Plans.Folder) {
		return fmt.Errorf("plans.folder must be a relative path, got: %q", cfg.Plans.Folder)
	}

	return nil
}
