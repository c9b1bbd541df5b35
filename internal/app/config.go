package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	ProductAPIURL     string        `envconfig:"PRODUCT_API_URL" default:"http://127.0.0.1:8000"`
	ProductAPITimeout time.Duration `envconfig:"PRODUCT_API_TIMEOUT" default:"10s"`

	SnapshotUsername string        `envconfig:"SNAPSHOT_USERNAME"`
	SnapshotPassword string        `envconfig:"SNAPSHOT_PASSWORD"`
	SnapshotTTL      time.Duration `envconfig:"SNAPSHOT_TTL" default:"26h"`
	SnapshotCron     string        `envconfig:"SNAPSHOT_CRON" default:"0 * * * *"`
}

// LoadConfig reads a .env file when present, then environment variables.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.ProductAPIURL == "" {
		return nil, errors.New("product api url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// SnapshotEnabled reports whether service credentials for the snapshot job
// are configured.
func (c *Config) SnapshotEnabled() bool {
	return c != nil && c.SnapshotUsername != "" && c.SnapshotPassword != ""
}
