// Package config loads service configuration from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the service settings. Every key can be set through an
// environment variable of the same name in upper case (PORT, DATABASE_URL, ...).
type Config struct {
	Port            int     `mapstructure:"port"`
	DatabaseURL     string  `mapstructure:"database_url"`
	CatalogDir      string  `mapstructure:"catalog_dir"` // empty uses the embedded catalog
	LogLevel        string  `mapstructure:"log_level"`
	LogFormat       string  `mapstructure:"log_format"` // json or console
	RankTopN        int     `mapstructure:"rank_top_n"`
	NormalizeTarget float64 `mapstructure:"normalize_target"`
	CORSOrigin      string  `mapstructure:"cors_origin"`

	RateLimitEnabled bool    `mapstructure:"rate_limit_enabled"`
	RateLimitRPS     float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int     `mapstructure:"rate_limit_burst"`
}

var defaults = map[string]any{
	"port":               8080,
	"database_url":       "",
	"catalog_dir":        "",
	"log_level":          "info",
	"log_format":         "console",
	"rank_top_n":         5,
	"normalize_target":   100.0,
	"cors_origin":        "*",
	"rate_limit_enabled": true,
	"rate_limit_rps":     10.0,
	"rate_limit_burst":   20,
}

// ErrDatabaseURLRequired is returned by RequireDatabase when no URL is set.
var ErrDatabaseURLRequired = errors.New("DATABASE_URL is required")

// Load reads configuration. path may name a YAML or JSON file; when empty
// only defaults and the environment are used. Environment values win over
// the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be 1-65535, got %d", c.Port)
	}
	if c.RankTopN < 1 {
		return fmt.Errorf("config error: RANK_TOP_N must be at least 1, got %d", c.RankTopN)
	}
	if c.NormalizeTarget <= 0 {
		return fmt.Errorf("config error: NORMALIZE_TARGET must be positive, got %v", c.NormalizeTarget)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("config error: LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst < 1) {
		return fmt.Errorf("config error: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// RequireDatabase returns ErrDatabaseURLRequired when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
