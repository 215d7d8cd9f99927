// Package config holds the environment-driven service configuration.
package config

import (
	"fmt"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string `env:"APP_NAME" env-default:"clover-api"`
	Version                       string `env:"APP_VERSION" env-default:"dev"`
	Port                          int    `env:"PORT" env-default:"3000"`
	LogLevel                      string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int    `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	StartupMaxAttempts            int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Upstream CRM API
	CRMBaseURL string `env:"CRM_BASE_URL" env-default:""`
	// Bearer token used for every upstream request
	CRMBearerToken string `env:"CRM_BEARER_TOKEN" env-default:""`
	// Upstream request timeout
	CRMTimeout time.Duration `env:"CRM_TIMEOUT" env-default:"30s"`

	// Redis host
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	// Redis port
	RedisPort int `env:"REDIS_PORT" env-default:"6379"`
	// Redis password
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	// Redis database number
	RedisDB int `env:"REDIS_DB" env-default:"0"`

	// Fanout settings
	// Concurrent per-person fetches in a touchpoint batch
	TouchpointConcurrency int `env:"TOUCHPOINT_CONCURRENCY" env-default:"5"`

	// Search settings
	// Quiet period before a changed search term triggers a fetch
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" env-default:"500ms"`

	// Warm the resource-type label cache during startup
	WarmLabelCache bool `env:"WARM_LABEL_CACHE" env-default:"true"`

	// Tracing settings
	// Enable OTLP tracing export (set to true to send traces to collector)
	OTLPEnabled bool `env:"OTLP_ENABLED" env-default:"false"`
	// OTLP collector endpoint
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	// OTLP protocol (grpc or http)
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	// Disable TLS for OTLP (for local development)
	OTLPInsecure bool `env:"OTLP_INSECURE" env-default:"true"`
}

// Load reads .env when present, binds environment variables, and validates
// the required upstream settings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to bind environment variables: %w", err)
	}

	if cfg.CRMBaseURL == "" {
		return nil, fmt.Errorf("CRM_BASE_URL is required")
	}
	if cfg.CRMBearerToken == "" {
		return nil, fmt.Errorf("CRM_BEARER_TOKEN is required")
	}

	return &cfg, nil
}
