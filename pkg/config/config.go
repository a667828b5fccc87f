// Package config loads gateway configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Connection methods for reaching the warehouse.
const (
	MethodAPI       = "api"       // JSON-over-HTTPS statements endpoint
	MethodConnector = "connector" // native driver via gosnowflake
)

// Authenticator types for the connector method.
const (
	AuthSnowflake              = "snowflake"
	AuthSnowflakeJWT           = "snowflake_jwt"
	AuthOAuth                  = "oauth"
	AuthOAuthClientCredentials = "oauth_client_credentials"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the full gateway configuration.
type Config struct {
	// Snowflake connection
	BaseURL          string
	Account          string
	Database         string
	Schema           string
	Warehouse        string
	User             string
	Password         string
	Role             string
	ConnectionMethod string
	Authenticator    string
	PrivateKeyFile   string
	PrivateKeyPwd    string
	OAuthClientID    string
	OAuthClientSec   string
	OAuthTokenURL    string
	Token            string

	// Caching
	EnableCaching bool
	CacheBackend  string
	CacheTTL      time.Duration
	CacheMaxSize  int
	RedisURL      string

	// Performance
	MaxHTTPConnections int
	HTTPTimeout        time.Duration
	RowDecodeWorkers   int
	RateLimitPerSecond int
	QueryBatchSize     int

	// Server
	Port          int
	LogLevel      string
	EnableMetrics bool
	MetricsPort   int
}

// Load reads configuration from environment variables, applying defaults
// for everything that is safe to default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SNOWFLAKE_WAREHOUSE", "DEFAULT")
	v.SetDefault("SNOWFLAKE_CONNECTION_METHOD", MethodAPI)
	v.SetDefault("SNOWFLAKE_AUTHENTICATOR", AuthSnowflake)
	v.SetDefault("ENABLE_CACHING", true)
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("CACHE_MAX_SIZE", 1000)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("MAX_HTTP_CONNECTIONS", 20)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 60)
	v.SetDefault("ROW_DECODE_WORKERS", 10)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 50)
	v.SetDefault("CONCURRENT_QUERY_BATCH_SIZE", 5)
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENABLE_METRICS", false)
	v.SetDefault("METRICS_PORT", 8000)

	cfg := &Config{
		BaseURL:          v.GetString("SNOWFLAKE_BASE_URL"),
		Account:          v.GetString("SNOWFLAKE_ACCOUNT"),
		Database:         v.GetString("SNOWFLAKE_DATABASE"),
		Schema:           v.GetString("SNOWFLAKE_SCHEMA"),
		Warehouse:        v.GetString("SNOWFLAKE_WAREHOUSE"),
		User:             v.GetString("SNOWFLAKE_USER"),
		Password:         v.GetString("SNOWFLAKE_PASSWORD"),
		Role:             v.GetString("SNOWFLAKE_ROLE"),
		ConnectionMethod: v.GetString("SNOWFLAKE_CONNECTION_METHOD"),
		Authenticator:    v.GetString("SNOWFLAKE_AUTHENTICATOR"),
		PrivateKeyFile:   v.GetString("SNOWFLAKE_PRIVATE_KEY_FILE"),
		PrivateKeyPwd:    v.GetString("SNOWFLAKE_PRIVATE_KEY_FILE_PWD"),
		OAuthClientID:    v.GetString("SNOWFLAKE_OAUTH_CLIENT_ID"),
		OAuthClientSec:   v.GetString("SNOWFLAKE_OAUTH_CLIENT_SECRET"),
		OAuthTokenURL:    v.GetString("SNOWFLAKE_OAUTH_TOKEN_URL"),
		Token:            v.GetString("SNOWFLAKE_TOKEN"),

		EnableCaching: v.GetBool("ENABLE_CACHING"),
		CacheBackend:  v.GetString("CACHE_BACKEND"),
		CacheTTL:      time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		CacheMaxSize:  v.GetInt("CACHE_MAX_SIZE"),
		RedisURL:      v.GetString("REDIS_URL"),

		MaxHTTPConnections: v.GetInt("MAX_HTTP_CONNECTIONS"),
		HTTPTimeout:        time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		RowDecodeWorkers:   v.GetInt("ROW_DECODE_WORKERS"),
		RateLimitPerSecond: v.GetInt("RATE_LIMIT_PER_SECOND"),
		QueryBatchSize:     v.GetInt("CONCURRENT_QUERY_BATCH_SIZE"),

		Port:          v.GetInt("PORT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		EnableMetrics: v.GetBool("ENABLE_METRICS"),
		MetricsPort:   v.GetInt("METRICS_PORT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enumerated fields and numeric ranges.
func (c *Config) Validate() error {
	switch c.ConnectionMethod {
	case MethodAPI, MethodConnector:
	default:
		return fmt.Errorf("SNOWFLAKE_CONNECTION_METHOD must be one of [%s %s], got %q",
			MethodAPI, MethodConnector, c.ConnectionMethod)
	}

	switch c.Authenticator {
	case AuthSnowflake, AuthSnowflakeJWT, AuthOAuth, AuthOAuthClientCredentials:
	default:
		return fmt.Errorf("SNOWFLAKE_AUTHENTICATOR must be one of [%s %s %s %s], got %q",
			AuthSnowflake, AuthSnowflakeJWT, AuthOAuth, AuthOAuthClientCredentials, c.Authenticator)
	}

	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of [%s %s], got %q",
			CacheBackendMemory, CacheBackendRedis, c.CacheBackend)
	}

	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1024 and 65535, got %d", c.Port)
	}

	if c.MetricsPort < 1024 || c.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be between 1024 and 65535, got %d", c.MetricsPort)
	}

	if c.CacheMaxSize < 1 {
		return fmt.Errorf("CACHE_MAX_SIZE must be >= 1, got %d", c.CacheMaxSize)
	}

	if c.RateLimitPerSecond < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be >= 1, got %d", c.RateLimitPerSecond)
	}

	if c.QueryBatchSize < 1 {
		return fmt.Errorf("CONCURRENT_QUERY_BATCH_SIZE must be >= 1, got %d", c.QueryBatchSize)
	}

	return nil
}
