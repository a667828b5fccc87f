package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ConnectionMethod != MethodAPI {
		t.Errorf("Expected default connection method %q, got %q", MethodAPI, cfg.ConnectionMethod)
	}
	if cfg.Warehouse != "DEFAULT" {
		t.Errorf("Expected default warehouse DEFAULT, got %q", cfg.Warehouse)
	}
	if !cfg.EnableCaching {
		t.Error("Expected caching enabled by default")
	}
	if cfg.CacheBackend != CacheBackendMemory {
		t.Errorf("Expected default cache backend memory, got %q", cfg.CacheBackend)
	}
	if cfg.CacheTTL != 300*time.Second {
		t.Errorf("Expected default cache TTL 300s, got %v", cfg.CacheTTL)
	}
	if cfg.CacheMaxSize != 1000 {
		t.Errorf("Expected default cache max size 1000, got %d", cfg.CacheMaxSize)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("Expected default HTTP timeout 60s, got %v", cfg.HTTPTimeout)
	}
	if cfg.RateLimitPerSecond != 50 {
		t.Errorf("Expected default rate limit 50, got %d", cfg.RateLimitPerSecond)
	}
	if cfg.QueryBatchSize != 5 {
		t.Errorf("Expected default batch size 5, got %d", cfg.QueryBatchSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SNOWFLAKE_BASE_URL", "https://test.snowflakecomputing.com/api/v2")
	t.Setenv("SNOWFLAKE_DATABASE", "JIRA_DB")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("RATE_LIMIT_PER_SECOND", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != "https://test.snowflakecomputing.com/api/v2" {
		t.Errorf("Base URL not picked up from environment: %q", cfg.BaseURL)
	}
	if cfg.Database != "JIRA_DB" {
		t.Errorf("Database not picked up from environment: %q", cfg.Database)
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Errorf("Cache TTL not picked up from environment: %v", cfg.CacheTTL)
	}
	if cfg.RateLimitPerSecond != 10 {
		t.Errorf("Rate limit not picked up from environment: %d", cfg.RateLimitPerSecond)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			ConnectionMethod:   MethodAPI,
			Authenticator:      AuthSnowflake,
			CacheBackend:       CacheBackendMemory,
			CacheMaxSize:       1000,
			RateLimitPerSecond: 50,
			QueryBatchSize:     5,
			Port:               8080,
			MetricsPort:        8000,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad_connection_method", func(c *Config) { c.ConnectionMethod = "grpc" }, "SNOWFLAKE_CONNECTION_METHOD"},
		{"bad_authenticator", func(c *Config) { c.Authenticator = "saml" }, "SNOWFLAKE_AUTHENTICATOR"},
		{"bad_cache_backend", func(c *Config) { c.CacheBackend = "disk" }, "CACHE_BACKEND"},
		{"port_too_low", func(c *Config) { c.Port = 80 }, "PORT"},
		{"metrics_port_too_high", func(c *Config) { c.MetricsPort = 70000 }, "METRICS_PORT"},
		{"zero_cache_size", func(c *Config) { c.CacheMaxSize = 0 }, "CACHE_MAX_SIZE"},
		{"zero_rate_limit", func(c *Config) { c.RateLimitPerSecond = 0 }, "RATE_LIMIT_PER_SECOND"},
		{"zero_batch_size", func(c *Config) { c.QueryBatchSize = 0 }, "CONCURRENT_QUERY_BATCH_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate should have returned an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
