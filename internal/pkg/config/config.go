package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const DefaultAPIURL = "http://localhost:5000/api"

type Config struct {
	APIURL    string `env:"HELPDESK_API_URL, default=http://localhost:5000/api"`
	Env       string `env:"APP_ENV,          default=development"`
	LogLevel  string `env:"LOG_LEVEL,        default=warn"`
	LogPretty bool   `env:"LOG_PRETTY,       default=true"`
	DiagAddr  string `env:"HELPDESK_DIAG_ADDR, default=127.0.0.1:9464"`

	Session   SessionConfig
	Notify    NotifyConfig
	Telemetry TelemetryConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// SessionConfig selects where the session entries are persisted.
type SessionConfig struct {
	Store     string `env:"SESSION_STORE,     default=file"`
	File      string `env:"SESSION_FILE"`
	Namespace string `env:"SESSION_NAMESPACE, default=default"`
}

type NotifyConfig struct {
	Interval time.Duration `env:"NOTIFY_POLL_INTERVAL, default=30s"`
}

type TelemetryConfig struct {
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=helpdesk_client"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper, then fills the
// derived defaults and validates the result.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	switch cfg.Session.Store {
	case "file", "redis", "mongo", "memory":
	default:
		return nil, fmt.Errorf("config: unknown SESSION_STORE %q (want file, redis, mongo or memory)", cfg.Session.Store)
	}
	if cfg.Session.Store == "file" && cfg.Session.File == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve session file: %w", err)
		}
		cfg.Session.File = filepath.Join(dir, "helpdesk", "session.json")
	}

	if cfg.Notify.Interval <= 0 {
		return nil, fmt.Errorf("config: NOTIFY_POLL_INTERVAL must be positive")
	}
	return &cfg, nil
}
