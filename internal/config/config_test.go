package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE_DRIVER", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
	if err.Error() != "database_url is required (env: DATABASE_URL)" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_MemoryDriverNeedsNoDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Errorf("expected StoreDriver memory, got %s", cfg.StoreDriver)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 6161 {
		t.Errorf("expected HTTPPort 6161, got %d", cfg.HTTPPort)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Errorf("expected StoreDriver postgres, got %s", cfg.StoreDriver)
	}
	if cfg.OTELEndpoint != "localhost:4317" {
		t.Errorf("expected OTELEndpoint localhost:4317, got %s", cfg.OTELEndpoint)
	}
	if cfg.CounterMaxAttempts != 10 {
		t.Errorf("expected CounterMaxAttempts 10, got %d", cfg.CounterMaxAttempts)
	}
	if cfg.CounterRetryBaseDelay != 5*time.Millisecond {
		t.Errorf("expected CounterRetryBaseDelay 5ms, got %v", cfg.CounterRetryBaseDelay)
	}
	if cfg.CounterRetryMaxDelay != 250*time.Millisecond {
		t.Errorf("expected CounterRetryMaxDelay 250ms, got %v", cfg.CounterRetryMaxDelay)
	}
	if cfg.DefaultRateLimit != 10 || cfg.DefaultRateLimitBurst != 20 {
		t.Errorf("expected rate limit 10/20, got %v/%d", cfg.DefaultRateLimit, cfg.DefaultRateLimitBurst)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected ShutdownTimeout 5s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://custom/db")
	t.Setenv("PORT", "9999")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("COUNTER_MAX_ATTEMPTS", "3")
	t.Setenv("COUNTER_RETRY_BASE_DELAY", "10ms")
	t.Setenv("COUNTER_RETRY_MAX_DELAY", "1s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://custom/db" {
		t.Errorf("expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 9999 {
		t.Errorf("expected HTTPPort 9999, got %d", cfg.HTTPPort)
	}
	if cfg.OTELEndpoint != "otel-collector:4317" {
		t.Errorf("expected OTELEndpoint otel-collector:4317, got %s", cfg.OTELEndpoint)
	}
	if cfg.CounterMaxAttempts != 3 {
		t.Errorf("expected CounterMaxAttempts 3, got %d", cfg.CounterMaxAttempts)
	}
	if cfg.CounterRetryBaseDelay != 10*time.Millisecond {
		t.Errorf("expected CounterRetryBaseDelay 10ms, got %v", cfg.CounterRetryBaseDelay)
	}
	if cfg.CounterRetryMaxDelay != time.Second {
		t.Errorf("expected CounterRetryMaxDelay 1s, got %v", cfg.CounterRetryMaxDelay)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "zero attempts", env: map[string]string{"COUNTER_MAX_ATTEMPTS": "0"}},
		{name: "max below base", env: map[string]string{
			"COUNTER_RETRY_BASE_DELAY": "1s",
			"COUNTER_RETRY_MAX_DELAY":  "10ms",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "fieldops-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `
database_url: "postgres://config-file/db"
http_port: 7777
counter_max_attempts: 4
counter_retry_max_delay: 2s
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()

	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("COUNTER_MAX_ATTEMPTS", "")
	t.Setenv("COUNTER_RETRY_MAX_DELAY", "")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://config-file/db" {
		t.Errorf("expected DatabaseURL from config file, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 7777 {
		t.Errorf("expected HTTPPort 7777, got %d", cfg.HTTPPort)
	}
	if cfg.CounterMaxAttempts != 4 {
		t.Errorf("expected CounterMaxAttempts 4, got %d", cfg.CounterMaxAttempts)
	}
	if cfg.CounterRetryMaxDelay != 2*time.Second {
		t.Errorf("expected CounterRetryMaxDelay 2s, got %v", cfg.CounterRetryMaxDelay)
	}
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "fieldops-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `
database_url: "postgres://from-file/db"
http_port: 7777
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()

	t.Setenv("DATABASE_URL", "postgres://from-env/db")
	t.Setenv("PORT", "8888")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://from-env/db" {
		t.Errorf("expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 8888 {
		t.Errorf("expected HTTPPort 8888 from env, got %d", cfg.HTTPPort)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}
