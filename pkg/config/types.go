package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sources SourcesConfig `yaml:"sources"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the price server component
type ServerConfig struct {
	HTTP            HTTPConfig `yaml:"http"`
	WebSocket       WSConfig   `yaml:"websocket"`
	CacheTTL        Duration   `yaml:"cache_ttl"`
	RefreshInterval Duration   `yaml:"refresh_interval"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// WSConfig configures the WebSocket server
type WSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// SourcesConfig configures the three upstream data sources
type SourcesConfig struct {
	SGE   SGEConfig   `yaml:"sge"`
	COMEX COMEXConfig `yaml:"comex"`
	FX    FXConfig    `yaml:"fx"`
}

// SGEConfig configures the Shanghai Gold Exchange delayed-quote source
type SGEConfig struct {
	URL      string   `yaml:"url"`      // Delayed quote page (HTML)
	Timeout  Duration `yaml:"timeout"`  // Per-request timeout
	Contract string   `yaml:"contract"` // Contract row label, e.g. "Ag(T+D)"
}

// COMEXConfig configures the COMEX spot price source
type COMEXConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// FXConfig configures the currency rate source
type FXConfig struct {
	URL      string   `yaml:"url"`
	Timeout  Duration `yaml:"timeout"`
	Currency string   `yaml:"currency"` // Quote currency to extract, e.g. "CNY"
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
