package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-me"

type Config struct {
	// DatabaseURL is either a SQLite file path or a postgres:// URL.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"marketplace.db"`
	ServerPort  string `env:"SERVER_PORT" envDefault:":5000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// RedisURL enables listing events and the live feed when set.
	RedisURL string `env:"REDIS_URL"`

	// TrustIdentityHeaders lets DELETE requests identify the caller with the
	// unverified User-Id / User-Role headers when no bearer token is sent.
	TrustIdentityHeaders bool `env:"TRUST_IDENTITY_HEADERS" envDefault:"true"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	SeedAccounts     bool     `env:"SEED_ACCOUNTS" envDefault:"true"`
}

func Load() (*Config, error) {
	// Containers pass variables directly, so a missing .env is fine.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		log.Println("JWT_SECRET not set; using development secret")
		c.JWTSecret = devJWTSecret
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRY %q", c.JWTExpiry)
	}
	if !strings.Contains(c.ServerPort, ":") {
		c.ServerPort = ":" + c.ServerPort
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsPostgres reports whether DatabaseURL points at PostgreSQL rather than a
// SQLite file.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func (c *Config) databaseLabel() string {
	if c.IsPostgres() {
		return "postgres://***"
	}
	return c.DatabaseURL
}

// String masks secrets.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, Port: %s, Env: %s, Redis: %t, TrustHeaders: %t, JWT: ***}",
		c.databaseLabel(), c.ServerPort, c.Environment, c.RedisURL != "", c.TrustIdentityHeaders)
}
