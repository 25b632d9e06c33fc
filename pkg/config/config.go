// Package config provides configuration loading and validation for silver-prices.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default upstream endpoints. COMEX has no default because the quote feed
// is deployment-specific; it must be set in the config file or environment.
const (
	DefaultSGEURL      = "https://www.sge.com.cn/sjzx/yshqbg"
	DefaultSGEContract = "Ag(T+D)"
	DefaultFXURL       = "https://api.frankfurter.app/latest?from=USD&to=CNY"
	DefaultFXCurrency  = "CNY"
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.WebSocket.Enabled && cfg.Server.WebSocket.Addr == "" {
		cfg.Server.WebSocket.Addr = ":8081"
	}
	if cfg.Server.CacheTTL.ToDuration() == 0 {
		cfg.Server.CacheTTL = Duration(30 * time.Second)
	}
	if cfg.Server.RefreshInterval.ToDuration() == 0 {
		cfg.Server.RefreshInterval = Duration(60 * time.Second)
	}

	// Source defaults
	if cfg.Sources.SGE.URL == "" {
		cfg.Sources.SGE.URL = DefaultSGEURL
	}
	if cfg.Sources.SGE.Contract == "" {
		cfg.Sources.SGE.Contract = DefaultSGEContract
	}
	if cfg.Sources.FX.URL == "" {
		cfg.Sources.FX.URL = DefaultFXURL
	}
	if cfg.Sources.FX.Currency == "" {
		cfg.Sources.FX.Currency = DefaultFXCurrency
	}
	cfg.Sources.FX.Currency = strings.ToUpper(cfg.Sources.FX.Currency)
	for _, t := range []*Duration{
		&cfg.Sources.SGE.Timeout,
		&cfg.Sources.COMEX.Timeout,
		&cfg.Sources.FX.Timeout,
	} {
		if t.ToDuration() == 0 {
			*t = Duration(10 * time.Second)
		}
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
