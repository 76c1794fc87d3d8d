package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "idtoken")
	t.Setenv("AUTH_AUDIENCE", "client-123")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com,https://ops.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "my_customer", cfg.DirectoryCustomerID)
	assert.Equal(t, 8, cfg.DirectoryMaxConcurrency)
	assert.Equal(t, 10*time.Second, cfg.DirectoryTimeout)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.CORSAllowedOrigins)

	assert.Equal(t, "my_customer", cfg.ServiceConfig().CustomerID)
	assert.Equal(t, "client-123", cfg.AuthConfig().Audience)
	assert.Equal(t, 10*time.Second, cfg.DirectoryConfig().Timeout)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			AppEnv:                  "production",
			AuthMode:                "iap",
			AuthAudience:            "/projects/1/global/backendServices/2",
			DirectoryMaxConcurrency: 4,
			RateLimitRequests:       10,
			RateLimitWindow:         time.Minute,
			LogLevel:                "info",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "missing audience", mutate: func(c *Config) { c.AuthAudience = "" }},
		{name: "unknown mode", mutate: func(c *Config) { c.AuthMode = "basic" }},
		{name: "header mode in production", mutate: func(c *Config) { c.AuthMode = "header" }},
		{name: "header mode in development", mutate: func(c *Config) { c.AuthMode = "header"; c.AppEnv = "development" }, ok: true},
		{name: "insecure directory in production", mutate: func(c *Config) { c.DirectoryInsecure = true }},
		{name: "zero concurrency", mutate: func(c *Config) { c.DirectoryMaxConcurrency = 0 }},
		{name: "zero rate window", mutate: func(c *Config) { c.RateLimitWindow = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestLoadToolConfigIgnoresServerSettings(t *testing.T) {
	t.Setenv("AUTH_MODE", "idtoken")
	t.Setenv("AUTH_AUDIENCE", "")

	_, err := LoadConfig()
	require.Error(t, err)

	cfg, err := LoadToolConfig()
	require.NoError(t, err)
	assert.Equal(t, "my_customer", cfg.DirectoryCustomerID)
}

func TestNewLoggerHonoursLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
