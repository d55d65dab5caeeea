package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Blob      BlobConfig
	Sites     SitesConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Reprocess ReprocessConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// DatabaseConfig controls the relational article/capture store.
type DatabaseConfig struct {
	// URL is the Postgres connection string.
	URL string

	// ConnectTimeout bounds the initial connect + ping.
	ConnectTimeout time.Duration // default: 10s
}

// BlobConfig controls the raw-capture blob store.
type BlobConfig struct {
	// Dir is the root directory for raw capture bodies.
	Dir string // default: "captures"
}

// SitesConfig controls per-site extraction configuration loading.
type SitesConfig struct {
	// Path is the YAML file mapping site names to site configurations.
	Path string // default: "site_configs.yml"
}

// ReprocessConfig controls the capture replay loop.
type ReprocessConfig struct {
	// Workers is the bounded worker pool size; 1 means sequential.
	Workers int // default: 1

	// ExportDir is where per-site article export files are written.
	ExportDir string // default: "articles"
}

// CacheConfig controls the compiled-selector cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached compiled expressions.
	MaxEntries int // default: 1000
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SIFT_HOST", "0.0.0.0"),
			Port: envIntOr("SIFT_PORT", 8080),
			Mode: envOr("SIFT_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL:            envOr("SIFT_DATABASE_URL", "postgres://localhost:5432/sift"),
			ConnectTimeout: envDurationOr("SIFT_DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Blob: BlobConfig{
			Dir: envOr("SIFT_BLOB_DIR", "captures"),
		},
		Sites: SitesConfig{
			Path: envOr("SIFT_SITE_CONFIGS", "site_configs.yml"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SIFT_AUTH_ENABLED", true),
			APIKeys: envSliceOr("SIFT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SIFT_RATE_RPS", 5.0),
			Burst:             envIntOr("SIFT_RATE_BURST", 10),
		},
		Reprocess: ReprocessConfig{
			Workers:   envIntOr("SIFT_REPROCESS_WORKERS", 1),
			ExportDir: envOr("SIFT_EXPORT_DIR", "articles"),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SIFT_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("SIFT_LOG_LEVEL", "info"),
			Format: envOr("SIFT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
