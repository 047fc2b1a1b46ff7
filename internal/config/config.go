package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the voiceagent-api service.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"voiceagent-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"VOICEAGENT_API_PORT" envDefault:"4003"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// OpenTelemetry
	EnableTracing bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	// Database
	DatabaseURL   string        `env:"DATABASE_URL"`
	DBMaxIdle     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBMaxOpen     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`

	// Redis read cache (disabled when REDIS_ADDR is empty)
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"60s"`

	// Dashboard auth
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change_this_jwt_secret"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"168h"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`
	BcryptCost    int           `env:"BCRYPT_ROUNDS" envDefault:"12"`

	// Worker trust boundary + API key encryption at rest
	WorkerSecret  string `env:"WORKER_SECRET"`
	EncryptionKey string `env:"ENCRYPTION_KEY" envDefault:""` // 64-char hex (32 bytes)

	// LiveKit
	LiveKitHost      string `env:"LIVEKIT_HOST"`
	LiveKitURL       string `env:"LIVEKIT_URL" envDefault:"ws://localhost:7880"`
	LiveKitAPIKey    string `env:"LIVEKIT_API_KEY"`
	LiveKitAPISecret string `env:"LIVEKIT_API_SECRET"`
	AgentPoolName    string `env:"AGENT_NAME" envDefault:"my-agent"`

	// Session admission
	RoomEmptyTimeout   time.Duration `env:"ROOM_EMPTY_TIMEOUT" envDefault:"5m"`
	EmbedRatePerMinute int           `env:"EMBED_RATE_PER_MINUTE" envDefault:"10"`
	CredentialTTLSlack time.Duration `env:"CREDENTIAL_TTL_SLACK" envDefault:"60s"`

	// Coarse per-IP cap across all routes, behind the embed limiter
	GlobalRateLimit  int           `env:"GLOBAL_RATE_LIMIT" envDefault:"200"`
	GlobalRateWindow time.Duration `env:"GLOBAL_RATE_WINDOW" envDefault:"15m"`

	// Preview agents
	PreviewAgentTTL   time.Duration `env:"PREVIEW_AGENT_TTL" envDefault:"5m"`
	PreviewSweepEvery time.Duration `env:"PREVIEW_SWEEP_INTERVAL" envDefault:"30s"`

	// Embed widget URLs returned to the dashboard
	AppURL   string `env:"APP_URL" envDefault:"http://localhost:4003"`
	EmbedURL string `env:"EMBED_URL" envDefault:"http://localhost:5173"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.LiveKitAPIKey) == "" {
		return nil, fmt.Errorf("LIVEKIT_API_KEY is required")
	}
	if strings.TrimSpace(cfg.LiveKitAPISecret) == "" {
		return nil, fmt.Errorf("LIVEKIT_API_SECRET is required")
	}
	if cfg.EncryptionKey != "" {
		if len(cfg.EncryptionKey) != 64 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be a 64-char hex string (32 bytes)")
		}
		if _, err := hex.DecodeString(cfg.EncryptionKey); err != nil {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be a 64-char hex string (32 bytes)")
		}
	}
	if cfg.IsProduction() && strings.TrimSpace(cfg.WorkerSecret) == "" {
		return nil, fmt.Errorf("WORKER_SECRET is required in production")
	}

	return cfg, nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EnforceOrigin reports whether embed origin validation is active.
// Relaxed outside production so local pages can exercise agents freely.
func (c *Config) EnforceOrigin() bool {
	return c.IsProduction()
}

// CacheEnabled reports whether the Redis read cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
