package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/syndic/internal/database"
)

// Store backends selectable through STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Name  string `envconfig:"APP_NAME" default:"Syndic"`
		Port  int    `envconfig:"PORT" default:"8080"`
		Store string `envconfig:"STORE" default:"memory"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"syndic"`
	}

	SQLite struct {
		Path string `envconfig:"SQLITE_PATH" default:"syndic.db"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Redis struct {
		// Addr enables the idempotency middleware when set.
		Addr           string        `envconfig:"REDIS_ADDR"`
		DB             int           `envconfig:"REDIS_DB" default:"0"`
		IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Seed struct {
		File string `envconfig:"SEED_FILE"`
		Demo bool   `envconfig:"SEED_DEMO" default:"false"`
	}

	View struct {
		// DefaultStatus is how pending entries are displayed, e.g. "paid" for
		// a verifier screen. Empty shows them as pending.
		DefaultStatus string `envconfig:"VIEW_DEFAULT_STATUS"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Database returns the dialect and DSN for the configured SQL backend. ok is
// false for the in-memory store.
func (c *Config) Database() (dialect database.Dialect, dsn string, ok bool) {
	switch c.App.Store {
	case StorePostgres:
		return database.Postgres, c.ConnectionString(), true
	case StoreSQLite:
		return database.SQLite, c.SQLite.Path, true
	}

	return "", "", false
}

func (c *Config) validate() error {
	switch c.App.Store {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown STORE %q, want %s, %s or %s", c.App.Store, StoreMemory, StorePostgres, StoreSQLite)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
