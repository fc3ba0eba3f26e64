// Package config loads service settings from .env and the process environment.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when API_KEY is not set.
var ErrMissingAPIKey = errors.New("API_KEY is not set in the environment variables")

// Config holds every runtime setting of the service.
type Config struct {
	APIKey         string        // Gemini API credential (required)
	GeminiModel    string        // model name, empty means the adapter default
	GeminiTimeout  time.Duration // timeout for one model call
	GeminiRPM      int           // model calls per minute, 0 means unlimited
	Port           string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	CacheTTL       time.Duration // response cache lifetime
	UploadTTL      time.Duration // upload handoff lifetime
	MaxUploadBytes int64         // multipart memory limit
	LogLevel       string
	LogFormat      string
}

// Load reads .env if present, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without reading .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIKey:         getEnv("API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", ""),
		GeminiTimeout:  getEnvDuration("GEMINI_TIMEOUT", 120*time.Second),
		GeminiRPM:      getEnvNonNegativeInt("GEMINI_RPM", 0),
		Port:           getEnv("PORT", "5000"),
		RedisHost:      getEnv("REDIS_HOST", ""),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		CacheTTL:       getEnvDuration("CACHE_TTL", 300*time.Second),
		UploadTTL:      getEnvDuration("UPLOAD_TTL", 10*time.Minute),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 32<<20),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// getEnv reads an environment variable with a default fallback.
// A variable set to the empty string counts as unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getEnvInt64(key string, def int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// getEnvNonNegativeInt accepts 0 as a valid value, for settings where 0 means disabled.
func getEnvNonNegativeInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}
