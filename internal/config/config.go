// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Deployment identifier, namespaces the change-feed channel so
	// multiple deployments sharing one Redis do not collide.
	AppID string `env:"APP_ID" envDefault:"mailvend"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache and change feed (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Marketplace settings
	AdminEmail          string `env:"ADMIN_EMAIL,required"`
	AcceptedEmailDomain string `env:"ACCEPTED_EMAIL_DOMAIN" envDefault:"@gmail.com"`
	SubmissionPrice     int64  `env:"SUBMISSION_PRICE" envDefault:"5"`

	// Session tokens
	JWTSecret  string        `env:"JWT_SECRET,required"`
	JWTIssuer  string        `env:"JWT_ISSUER" envDefault:"mailvend"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"0s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid, so a
// misconfigured deployment refuses to start instead of half-working.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.AdminEmail = strings.ToLower(strings.TrimSpace(c.AdminEmail))
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL must not be blank")
	}

	c.AcceptedEmailDomain = strings.ToLower(strings.TrimSpace(c.AcceptedEmailDomain))
	if !strings.HasPrefix(c.AcceptedEmailDomain, "@") {
		return fmt.Errorf("ACCEPTED_EMAIL_DOMAIN must start with '@', got %q", c.AcceptedEmailDomain)
	}

	if c.SubmissionPrice <= 0 {
		return fmt.Errorf("SUBMISSION_PRICE must be positive, got %d", c.SubmissionPrice)
	}

	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}

	return nil
}
