package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Identity
	DevFakeUserID string // Session id used when no X-User-ID header is present, development only

	// Cache
	RedisURL               string        // Empty disables the shared cache
	OptionsCacheTTL        time.Duration // env: OPTIONS_CACHE_TTL, default: 5m
	OptionsRefreshInterval time.Duration // env: OPTIONS_REFRESH_INTERVAL, default: 2m

	// AI
	AnthropicAPIKey string
	AnthropicModel  string
	AITimeout       time.Duration
	AIMaxTokens     int64

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Lifecycle
	ArchiveReason string
}

// Load reads configuration from environment variables with sensible defaults.
// Variables from a .env file in the working directory are loaded first and
// never override the real environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:                    getEnv("ENV", "development"),
		ServerAddr:             getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:            getEnv("DATABASE_URL", "postgres://localhost:5432/outreach?sslmode=disable"),
		CORSOrigins:            getEnv("CORS_ORIGINS", ""),
		DevFakeUserID:          getEnv("DEV_FAKE_USER_ID", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		OptionsCacheTTL:        getDuration("OPTIONS_CACHE_TTL", 5*time.Minute),
		OptionsRefreshInterval: getDuration("OPTIONS_REFRESH_INTERVAL", 2*time.Minute),
		AnthropicAPIKey:        getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:         getEnv("ANTHROPIC_MODEL", ""),
		AITimeout:              getDuration("AI_TIMEOUT", 60*time.Second),
		AIMaxTokens:            int64(getInt("AI_MAX_TOKENS", 2048)),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "text"),
		ArchiveReason:          getEnv("ARCHIVE_REASON", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return n
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// AllowedOrigins splits CORSOrigins, defaulting to any origin in development.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 && c.IsDev() {
		return []string{"*"}
	}
	return origins
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
