// Package config loads server configuration from the environment and builds
// the service from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edustack/teachstore/pkg/teachstore"
	"github.com/edustack/teachstore/pkg/teachstore/repo/memory"
	"github.com/edustack/teachstore/pkg/teachstore/repo/postgres"
	fsstorage "github.com/edustack/teachstore/pkg/teachstore/storage/fs"
)

// Config is the server configuration.
//
// DATABASE_URL selects the repository: empty or "memory" runs in-memory,
// a postgres:// / postgresql:// URL runs against PostgreSQL with embedded
// migrations applied at startup.
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	DatabaseURL string `env:"DATABASE_URL" env-default:""`
	UploadDir   string `env:"UPLOAD_DIR" env-default:"./uploads"`

	JWTSecret string        `env:"JWT_SECRET" env-default:""`
	TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"12h"`

	// MaxUploadBytes caps a single upload request body. Defaults to 2 MiB.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"2097152"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.UploadDir == "" {
		return errors.New("upload directory is required")
	}
	if c.DatabaseURL != "" && c.DatabaseURL != "memory" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL %q (use 'memory' or 'postgresql://...')", c.DatabaseURL)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	return nil
}

// BuildService constructs the repository and file store selected by the
// configuration and assembles the service over them.
func (c *Config) BuildService(ctx context.Context) (teachstore.Service, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("build repository: %w", err)
	}

	files, err := fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir})
	if err != nil {
		return nil, fmt.Errorf("build file store: %w", err)
	}

	return teachstore.New(
		teachstore.WithRepository(repo),
		teachstore.WithFileStore(files),
	)
}

func (c *Config) buildRepository(ctx context.Context) (teachstore.Repository, error) {
	if c.DatabaseURL == "" || c.DatabaseURL == "memory" {
		return memory.New(), nil
	}

	if err := postgres.Migrate(ctx, c.DatabaseURL); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pool, err := pgxpool.New(ctx, c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return postgres.NewWithPool(pool), nil
}
