package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Upstream UpstreamConfig
	Session  SessionConfig
	Poll     PollConfig
	CORS     CORSConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type UpstreamConfig struct {
	BackendURL   string        `env:"BACKEND_URL,      default=http://localhost:8081/api"`
	SchedulerURL string        `env:"SCHEDULER_URL,    default=http://localhost:8084/api/scheduler"`
	Timeout      time.Duration `env:"UPSTREAM_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	CookieName string `env:"SESSION_COOKIE, default=portal_session"`
	Secure     bool   `env:"SESSION_SECURE, default=false"`
}

type PollConfig struct {
	Interval   time.Duration `env:"POLL_INTERVAL,    default=15s"`
	MaxBackoff time.Duration `env:"POLL_MAX_BACKOFF, default=2m"`
}

type CORSConfig struct {
	Origins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB,        default=portal_gateway"`
	AuditRetention time.Duration `env:"AUDIT_RETENTION, default=2160h"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the gateway runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
