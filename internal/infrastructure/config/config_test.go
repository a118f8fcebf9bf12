package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// CORS and compute config
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 100000, cfg.Compute.MaxDatasetSize)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"MAX_DATASET_SIZE":   "5000",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 5000, cfg.Compute.MaxDatasetSize)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("PORT", "3000")
	require.NoError(t, err)
	defer os.Unsetenv("PORT")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
server:
  port: "4000"
logging:
  level: debug
compute:
  max_dataset_size: 250
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// File values win
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250, cfg.Compute.MaxDatasetSize)

	// Untouched sections keep env/default values
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantPort string
		wantHost string
	}{
		{
			name:     "default values",
			wantPort: "8080",
			wantHost: "0.0.0.0",
		},
		{
			name:     "custom port",
			port:     "9000",
			wantPort: "9000",
			wantHost: "0.0.0.0",
		},
		{
			name:     "custom host",
			host:     "localhost",
			wantPort: "8080",
			wantHost: "localhost",
		},
		{
			name:     "custom port and host",
			port:     "3000",
			host:     "127.0.0.1",
			wantPort: "3000",
			wantHost: "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("PORT")
			os.Unsetenv("HOST")

			if tt.port != "" {
				err := os.Setenv("PORT", tt.port)
				require.NoError(t, err)
				defer os.Unsetenv("PORT")
			}
			if tt.host != "" {
				err := os.Setenv("HOST", tt.host)
				require.NoError(t, err)
				defer os.Unsetenv("HOST")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
		})
	}
}

func TestRateLimitConfig(t *testing.T) {
	tests := []struct {
		name        string
		rps         string
		burst       string
		enabled     string
		wantRPS     int
		wantBurst   int
		wantEnabled bool
	}{
		{
			name:        "default values",
			wantRPS:     50,
			wantBurst:   100,
			wantEnabled: true,
		},
		{
			name:        "high limits",
			rps:         "1000",
			burst:       "2000",
			wantRPS:     1000,
			wantBurst:   2000,
			wantEnabled: true,
		},
		{
			name:        "disabled",
			enabled:     "false",
			wantRPS:     50,
			wantBurst:   100,
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("RATE_LIMIT_RPS")
			os.Unsetenv("RATE_LIMIT_BURST")
			os.Unsetenv("RATE_LIMIT_ENABLED")

			if tt.rps != "" {
				err := os.Setenv("RATE_LIMIT_RPS", tt.rps)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_RPS")
			}
			if tt.burst != "" {
				err := os.Setenv("RATE_LIMIT_BURST", tt.burst)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_BURST")
			}
			if tt.enabled != "" {
				err := os.Setenv("RATE_LIMIT_ENABLED", tt.enabled)
				require.NoError(t, err)
				defer os.Unsetenv("RATE_LIMIT_ENABLED")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantRPS, cfg.RateLimit.RequestsPerSecond)
			assert.Equal(t, tt.wantBurst, cfg.RateLimit.Burst)
			assert.Equal(t, tt.wantEnabled, cfg.RateLimit.Enabled)
		})
	}
}
