package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/cepadmin/cepadmin/internal/auth"
	"github.com/cepadmin/cepadmin/internal/directory"
	"github.com/cepadmin/cepadmin/internal/rbac"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	DirectoryCredentialsFile string        `envconfig:"DIRECTORY_CREDENTIALS_FILE"`
	DirectoryImpersonate     string        `envconfig:"DIRECTORY_IMPERSONATE"`
	DirectoryCustomerID      string        `envconfig:"DIRECTORY_CUSTOMER_ID" default:"my_customer"`
	DirectoryEndpoint        string        `envconfig:"DIRECTORY_ENDPOINT"`
	DirectoryInsecure        bool          `envconfig:"DIRECTORY_INSECURE" default:"false"`
	DirectoryTimeout         time.Duration `envconfig:"DIRECTORY_TIMEOUT" default:"10s"`
	DirectoryMaxConcurrency  int           `envconfig:"DIRECTORY_MAX_CONCURRENCY" default:"8"`

	AuthMode          string `envconfig:"AUTH_MODE" default:"idtoken"`
	AuthAudience      string `envconfig:"AUTH_AUDIENCE"`
	AuthTrustedHeader string `envconfig:"AUTH_TRUSTED_HEADER" default:"X-Goog-Authenticated-User-Email"`

	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	RedisAddr         string        `envconfig:"REDIS_ADDR"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadToolConfig reads configuration for the operator commands, which talk
// to the directory but never serve HTTP.
func LoadToolConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validateDirectory(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch auth.Mode(c.AuthMode) {
	case auth.ModeIDToken, auth.ModeIAP:
		if strings.TrimSpace(c.AuthAudience) == "" {
			return fmt.Errorf("auth audience must be provided for %s mode", c.AuthMode)
		}
	case auth.ModeHeader:
		if c.IsProduction() {
			return errors.New("header auth mode is not allowed in production")
		}
	default:
		return fmt.Errorf("%w: %q", auth.ErrUnsupportedMode, c.AuthMode)
	}
	if c.RateLimitRequests < 1 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit requests and window must be positive")
	}
	return c.validateDirectory()
}

func (c *Config) validateDirectory() error {
	if c.DirectoryInsecure && c.IsProduction() {
		return errors.New("insecure directory access is not allowed in production")
	}
	if c.DirectoryMaxConcurrency < 1 {
		return errors.New("directory max concurrency must be at least 1")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// DirectoryConfig returns the directory client settings.
func (c *Config) DirectoryConfig() directory.Config {
	return directory.Config{
		CredentialsFile: c.DirectoryCredentialsFile,
		Impersonate:     c.DirectoryImpersonate,
		Endpoint:        c.DirectoryEndpoint,
		WithoutAuth:     c.DirectoryInsecure,
		Timeout:         c.DirectoryTimeout,
	}
}

// ServiceConfig returns the evaluator settings.
func (c *Config) ServiceConfig() rbac.ServiceConfig {
	return rbac.ServiceConfig{
		CustomerID:     c.DirectoryCustomerID,
		MaxConcurrency: c.DirectoryMaxConcurrency,
	}
}

// AuthConfig returns the caller verification settings.
func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		Mode:          auth.Mode(c.AuthMode),
		Audience:      c.AuthAudience,
		TrustedHeader: c.AuthTrustedHeader,
	}
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}
