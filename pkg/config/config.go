// Package config provides configuration loading and validation for the
// ingestion CLI: the repository to walk, the commit range and root
// module path to hand to a campaign, the ingestion engine's tunables,
// the blob cache size, and where logs go.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrMissingRepository = errors.New("repository path is required")
	ErrMissingAfter      = errors.New("repository.after revision is required")
	ErrInvalidMaxRefs    = errors.New("analysis max_refs must be positive")
	ErrInvalidCacheSize  = errors.New("cache max_size_bytes must be positive")
)

// Config holds all configuration for the ingestion CLI.
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// RepositoryConfig names the Git repository and commit range a
// campaign walks.
type RepositoryConfig struct {
	// Path is the filesystem path to the repository's .git directory
	// (or a working copy containing one).
	Path string `mapstructure:"path"`
	// Before is the exclusive lower bound of the commit range — the
	// empty string means "from the root commit(s)".
	Before string `mapstructure:"before"`
	// After is the inclusive upper bound of the commit range (the tip
	// to walk from); required.
	After string `mapstructure:"after"`
	// RootModule is the path, relative to each commit's root tree,
	// that a campaign descends to before classification begins.
	RootModule string `mapstructure:"root_module"`
	// Language selects which Handle*Commit entry point a campaign
	// drives: "maven", "java", or "cpp".
	Language string `mapstructure:"language"`
}

// AnalysisConfig holds the ingestion engine's tunables, mirroring
// ingest.Config's own fields one-for-one.
type AnalysisConfig struct {
	MaxRefs                int  `mapstructure:"max_refs"`
	PropagateErrorOnBadCST bool `mapstructure:"propagate_error_on_bad_cst"`
}

// CacheConfig holds cross-commit blob-cache sizing.
type CacheConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment variables.
// configPath, if non-empty, is read as an explicit file and any error
// reading it (including "not found") is fatal; otherwise config.yaml is
// searched for in the working directory and ./config, and its absence
// is not an error — defaults and environment overrides still apply.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
	}

	viperCfg.SetEnvPrefix("HYPERAST")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if readErr := viperCfg.ReadInConfig(); readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.language", "maven")

	viperCfg.SetDefault("analysis.max_refs", DefaultMaxRefs)
	viperCfg.SetDefault("analysis.propagate_error_on_bad_cst", false)

	viperCfg.SetDefault("cache.max_size_bytes", DefaultCacheMaxSizeBytes)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
	viperCfg.SetDefault("logging.output", "stderr")
}

func validateConfig(cfg *Config) error {
	if cfg.Repository.Path == "" {
		return ErrMissingRepository
	}

	if cfg.Repository.After == "" {
		return ErrMissingAfter
	}

	if cfg.Analysis.MaxRefs <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxRefs, cfg.Analysis.MaxRefs)
	}

	if cfg.Cache.MaxSizeBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, cfg.Cache.MaxSizeBytes)
	}

	return nil
}
