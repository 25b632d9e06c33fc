package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  comex:
    url: https://quotes.example.com/v1/comex/silver
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL.ToDuration())
	assert.Equal(t, 60*time.Second, cfg.Server.RefreshInterval.ToDuration())
	assert.False(t, cfg.Server.WebSocket.Enabled)

	assert.Equal(t, DefaultSGEURL, cfg.Sources.SGE.URL)
	assert.Equal(t, "Ag(T+D)", cfg.Sources.SGE.Contract)
	assert.Equal(t, "https://quotes.example.com/v1/comex/silver", cfg.Sources.COMEX.URL)
	assert.Equal(t, DefaultFXURL, cfg.Sources.FX.URL)
	assert.Equal(t, "CNY", cfg.Sources.FX.Currency)
	assert.Equal(t, 10*time.Second, cfg.Sources.SGE.Timeout.ToDuration())
	assert.Equal(t, 10*time.Second, cfg.Sources.COMEX.Timeout.ToDuration())
	assert.Equal(t, 10*time.Second, cfg.Sources.FX.Timeout.ToDuration())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	require.NoError(t, Validate(cfg))
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: ":9000"
  websocket:
    enabled: true
  cache_ttl: 15s
  refresh_interval: 45s
sources:
  sge:
    url: https://sge.example.com/quotes
    timeout: 5s
    contract: "Au(T+D)"
  comex:
    url: https://quotes.example.com/v1/comex/silver
    timeout: 7s
  fx:
    url: https://fx.example.com/latest
    timeout: 3s
    currency: cny
metrics:
  enabled: true
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTP.Addr)
	assert.True(t, cfg.Server.WebSocket.Enabled)
	assert.Equal(t, ":8081", cfg.Server.WebSocket.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.CacheTTL.ToDuration())
	assert.Equal(t, 45*time.Second, cfg.Server.RefreshInterval.ToDuration())

	assert.Equal(t, "Au(T+D)", cfg.Sources.SGE.Contract)
	assert.Equal(t, 5*time.Second, cfg.Sources.SGE.Timeout.ToDuration())
	assert.Equal(t, 7*time.Second, cfg.Sources.COMEX.Timeout.ToDuration())
	assert.Equal(t, 3*time.Second, cfg.Sources.FX.Timeout.ToDuration())
	// Quote currency is normalized to upper case.
	assert.Equal(t, "CNY", cfg.Sources.FX.Currency)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9091", cfg.Metrics.Addr)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	require.NoError(t, Validate(cfg))
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("COMEX_URL", "https://quotes.example.com/v1/comex/silver")

	path := writeConfig(t, `
sources:
  comex:
    url: ${COMEX_URL}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://quotes.example.com/v1/comex/silver", cfg.Sources.COMEX.URL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "sources: [not: valid\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Sources.COMEX.URL = "https://quotes.example.com/v1/comex/silver"
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing comex url",
			mutate:  func(c *Config) { c.Sources.COMEX.URL = "" },
			wantErr: ErrCOMEXURLRequired,
		},
		{
			name:    "missing sge url",
			mutate:  func(c *Config) { c.Sources.SGE.URL = "" },
			wantErr: ErrSGEURLRequired,
		},
		{
			name:    "missing fx url",
			mutate:  func(c *Config) { c.Sources.FX.URL = "" },
			wantErr: ErrFXURLRequired,
		},
		{
			name:    "empty contract",
			mutate:  func(c *Config) { c.Sources.SGE.Contract = "" },
			wantErr: ErrContractRequired,
		},
		{
			name:    "empty currency",
			mutate:  func(c *Config) { c.Sources.FX.Currency = "" },
			wantErr: ErrCurrencyRequired,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Sources.FX.Timeout = Duration(-time.Second) },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Server.CacheTTL = Duration(-time.Second) },
			wantErr: ErrInvalidCacheTTL,
		},
		{
			name:    "zero refresh interval",
			mutate:  func(c *Config) { c.Server.RefreshInterval = 0 },
			wantErr: ErrInvalidRefreshInterval,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
