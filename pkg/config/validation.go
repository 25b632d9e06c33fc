package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateSourcesConfig(&cfg.Sources); err != nil {
		return fmt.Errorf("sources config: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.CacheTTL.ToDuration() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCacheTTL, cfg.CacheTTL.ToDuration())
	}
	if cfg.RefreshInterval.ToDuration() <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRefreshInterval, cfg.RefreshInterval.ToDuration())
	}
	return nil
}

func validateSourcesConfig(cfg *SourcesConfig) error {
	if cfg.SGE.URL == "" {
		return ErrSGEURLRequired
	}
	if cfg.SGE.Contract == "" {
		return ErrContractRequired
	}
	if cfg.COMEX.URL == "" {
		return ErrCOMEXURLRequired
	}
	if cfg.FX.URL == "" {
		return ErrFXURLRequired
	}
	if cfg.FX.Currency == "" {
		return ErrCurrencyRequired
	}
	for name, timeout := range map[string]Duration{
		"sge":   cfg.SGE.Timeout,
		"comex": cfg.COMEX.Timeout,
		"fx":    cfg.FX.Timeout,
	} {
		if timeout.ToDuration() <= 0 {
			return fmt.Errorf("%w: source %s", ErrInvalidTimeout, name)
		}
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	// Validate format
	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
