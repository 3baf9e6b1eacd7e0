package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

// MinJWTSecretLength is the shortest JWT_SECRET accepted, in bytes.
const MinJWTSecretLength = 32

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
	"my-very-long-and-secure-secret-key-that-must-be-at-least-64-characters-long-12345",
}

type Config struct {
	Port                int    `env:"PORT" envDefault:"8080"`
	Environment         string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	RedisURL            string `env:"REDIS_URL"`
	JWTSecret           string `env:"JWT_SECRET,required"`
	SessionTTLHours     int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	ResetTokenTTLHours  int    `env:"RESET_TOKEN_TTL_HOURS" envDefault:"24"`
	FrontendURL         string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	SMTPHost            string `env:"SMTP_HOST"`
	SMTPPort            int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername        string `env:"SMTP_USERNAME"`
	SMTPPassword        string `env:"SMTP_PASSWORD"`
	SMTPFrom            string `env:"SMTP_FROM" envDefault:"no-reply@localhost"`
	SMTPTLSMode         string `env:"SMTP_TLS_MODE" envDefault:"starttls"`
	AuthRateLimitPerMin int    `env:"AUTH_RATE_LIMIT_PER_MIN" envDefault:"10"`
	MigrateOnStart      bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// Validate checks the configuration. The JWT secret contract applies in every
// environment; the remaining checks only warn, and only in production.
func (c *Config) Validate(isProduction bool) error {
	if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
		return err
	}

	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.ResetTokenTTLHours <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL_HOURS must be positive")
	}
	if c.AuthRateLimitPerMin <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_PER_MIN must be positive")
	}

	switch c.SMTPTLSMode {
	case "starttls", "tls", "none":
	default:
		return fmt.Errorf("SMTP_TLS_MODE must be one of starttls, tls, none")
	}

	if isProduction {
		if c.RedisURL == "" {
			log.Warn().Msg("REDIS_URL is empty in production: auth rate limiting is per-instance only")
		} else if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if !c.SMTPEnabled() {
			log.Warn().Msg("SMTP_HOST is empty in production: password reset links are only written to the log")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < MinJWTSecretLength {
		return fmt.Errorf("%s must be at least %d characters (generate with: go run scripts/gen-secret.go)", name, MinJWTSecretLength)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
