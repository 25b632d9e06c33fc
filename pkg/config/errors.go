package config

import "errors"

var (
	// ErrCOMEXURLRequired indicates that sources.comex.url must be specified.
	ErrCOMEXURLRequired = errors.New("sources.comex.url must be specified")
	// ErrSGEURLRequired indicates that sources.sge.url must be specified.
	ErrSGEURLRequired = errors.New("sources.sge.url must be specified")
	// ErrFXURLRequired indicates that sources.fx.url must be specified.
	ErrFXURLRequired = errors.New("sources.fx.url must be specified")
	// ErrContractRequired indicates that the SGE contract label is empty.
	ErrContractRequired = errors.New("sources.sge.contract must be specified")
	// ErrCurrencyRequired indicates that the FX quote currency is empty.
	ErrCurrencyRequired = errors.New("sources.fx.currency must be specified")
	// ErrInvalidTimeout indicates that a source timeout is not positive.
	ErrInvalidTimeout = errors.New("timeout must be positive")
	// ErrInvalidCacheTTL indicates that the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("cache_ttl must not be negative")
	// ErrInvalidRefreshInterval indicates that the refresh interval is not positive.
	ErrInvalidRefreshInterval = errors.New("refresh_interval must be positive")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
