// Package config loads controller settings from defaults, an optional YAML
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all configuration values for the controller.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the controller
	HTTPPort int

	// Backing store: "postgres" or "memory"
	StoreDriver string

	// OTLP gRPC collector address
	OTELEndpoint string

	// Counter allocation retry policy
	CounterMaxAttempts    int
	CounterRetryBaseDelay time.Duration
	CounterRetryMaxDelay  time.Duration

	// Limits given to technicians created from the command line
	DefaultRateLimit      float64
	DefaultRateLimitBurst int

	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration

	// debug, info, warn or error
	LogLevel string
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"database_url":             "DATABASE_URL",
	"http_port":                "PORT",
	"store_driver":             "STORE_DRIVER",
	"otel_endpoint":            "OTEL_EXPORTER_OTLP_ENDPOINT",
	"counter_max_attempts":     "COUNTER_MAX_ATTEMPTS",
	"counter_retry_base_delay": "COUNTER_RETRY_BASE_DELAY",
	"counter_retry_max_delay":  "COUNTER_RETRY_MAX_DELAY",
	"default_rate_limit":       "DEFAULT_RATE_LIMIT",
	"default_rate_limit_burst": "DEFAULT_RATE_LIMIT_BURST",
	"shutdown_timeout":         "SHUTDOWN_TIMEOUT",
	"log_level":                "LOG_LEVEL",
}

// Load reads configuration. When path is empty, fieldops.yaml in the
// current directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 6161)
	v.SetDefault("store_driver", StoreDriverPostgres)
	v.SetDefault("otel_endpoint", "localhost:4317")
	v.SetDefault("counter_max_attempts", 10)
	v.SetDefault("counter_retry_base_delay", 5*time.Millisecond)
	v.SetDefault("counter_retry_max_delay", 250*time.Millisecond)
	v.SetDefault("default_rate_limit", 10.0)
	v.SetDefault("default_rate_limit_burst", 20)
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("fieldops")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		DatabaseURL:           v.GetString("database_url"),
		HTTPPort:              v.GetInt("http_port"),
		StoreDriver:           v.GetString("store_driver"),
		OTELEndpoint:          v.GetString("otel_endpoint"),
		CounterMaxAttempts:    v.GetInt("counter_max_attempts"),
		CounterRetryBaseDelay: v.GetDuration("counter_retry_base_delay"),
		CounterRetryMaxDelay:  v.GetDuration("counter_retry_max_delay"),
		DefaultRateLimit:      v.GetFloat64("default_rate_limit"),
		DefaultRateLimitBurst: v.GetInt("default_rate_limit_burst"),
		ShutdownTimeout:       v.GetDuration("shutdown_timeout"),
		LogLevel:              v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required (env: DATABASE_URL)")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("invalid store_driver %q: must be %q or %q", c.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port %d", c.HTTPPort)
	}
	if c.CounterMaxAttempts <= 0 {
		return fmt.Errorf("counter_max_attempts must be positive, got %d", c.CounterMaxAttempts)
	}
	if c.CounterRetryMaxDelay < c.CounterRetryBaseDelay {
		return fmt.Errorf("counter_retry_max_delay (%s) is below counter_retry_base_delay (%s)",
			c.CounterRetryMaxDelay, c.CounterRetryBaseDelay)
	}
	return nil
}
