// Package config loads application configuration from environment variables.
// All variables use the SPAN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Session     SessionConfig
	Grading     GradingConfig
	Instructor  InstructorConfig
	Log         LogConfig
	ContentPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// event logging.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL keeps
// session state in memory.
type CacheConfig struct {
	URL      string
	PoolSize int
}

// SessionConfig holds learner session cookie settings.
type SessionConfig struct {
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// GradingConfig holds answer comparison settings.
type GradingConfig struct {
	AccentInsensitive bool
}

// InstructorConfig holds credentials for the answer-key export.
type InstructorConfig struct {
	Username     string
	PasswordHash string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with SPAN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("SPAN_SERVER_PORT", 8080),
			Host:           envStr("SPAN_SERVER_HOST", "0.0.0.0"),
			AllowedOrigins: envList("SPAN_SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:      envStr("SPAN_DATABASE_URL", ""),
			MaxConns: envInt("SPAN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("SPAN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:      envStr("SPAN_CACHE_URL", ""),
			PoolSize: envInt("SPAN_CACHE_POOL_SIZE", 10),
		},
		Session: SessionConfig{
			TTL:        time.Duration(envInt("SPAN_SESSION_TTL_HOURS", 12)) * time.Hour,
			CookieName: envStr("SPAN_SESSION_COOKIE", "span2030_session"),
			Secure:     envBool("SPAN_SESSION_SECURE", false),
		},
		Grading: GradingConfig{
			AccentInsensitive: envBool("SPAN_GRADING_ACCENT_INSENSITIVE", false),
		},
		Instructor: InstructorConfig{
			Username:     envStr("SPAN_INSTRUCTOR_USERNAME", "profesor"),
			PasswordHash: envStr("SPAN_INSTRUCTOR_PASSWORD_HASH", ""),
		},
		Log: LogConfig{
			Level:  envStr("SPAN_LOG_LEVEL", "info"),
			Format: envStr("SPAN_LOG_FORMAT", "json"),
		},
		ContentPath: envStr("SPAN_CONTENT_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SPAN_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("SPAN_DATABASE_MIN_CONNS (%d) exceeds SPAN_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SPAN_SESSION_TTL_HOURS must be positive")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("SPAN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.InstructorEnabled() {
		if c.Instructor.Username == "" {
			return fmt.Errorf("SPAN_INSTRUCTOR_USERNAME is required when a password hash is set")
		}
		if _, err := bcrypt.Cost([]byte(c.Instructor.PasswordHash)); err != nil {
			return fmt.Errorf("SPAN_INSTRUCTOR_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
	}

	return nil
}

// InstructorEnabled returns true if the answer-key export is configured.
func (c *Config) InstructorEnabled() bool {
	return c.Instructor.PasswordHash != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
