package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/logicaloutcomes/gather/relay"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Scraper   ScraperConfig
	Relays    []relay.Config
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ScraperConfig controls cascade behavior.
type ScraperConfig struct {
	// Timeout is the per-attempt deadline.
	Timeout time.Duration // default: 8s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 60s

	// AttemptsPerRelay is the total attempts per relay before moving on.
	AttemptsPerRelay int // default: 3

	// BaseBackoff is the first inter-retry delay.
	BaseBackoff time.Duration // default: 2s

	// RetryAfterFallback is the wait for a 429 without a usable header.
	RetryAfterFallback time.Duration // default: 5s

	// RetryAfterMax is the largest honored Retry-After.
	RetryAfterMax time.Duration // default: 30s

	// Concurrency is the default batch size for multi-URL gathers.
	Concurrency int // default: 4

	// MinContentLength is the shortest extraction accepted as success.
	MinContentLength int // default: 50
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

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 1000
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
			Host: envOr("GATHER_HOST", "0.0.0.0"),
			Port: envIntOr("GATHER_PORT", 8080),
			Mode: envOr("GATHER_MODE", "release"),
		},
		Scraper: ScraperConfig{
			Timeout:            envDurationOr("GATHER_TIMEOUT", 8*time.Second),
			MaxTimeout:         envDurationOr("GATHER_MAX_TIMEOUT", 60*time.Second),
			AttemptsPerRelay:   envIntOr("GATHER_ATTEMPTS_PER_RELAY", 3),
			BaseBackoff:        envDurationOr("GATHER_BASE_BACKOFF", 2*time.Second),
			RetryAfterFallback: envDurationOr("GATHER_RETRY_AFTER_FALLBACK", 5*time.Second),
			RetryAfterMax:      envDurationOr("GATHER_RETRY_AFTER_MAX", 30*time.Second),
			Concurrency:        envIntOr("GATHER_CONCURRENCY", 4),
			MinContentLength:   envIntOr("GATHER_MIN_CONTENT", 50),
		},
		Relays: envRelaysOr("GATHER_RELAYS", relay.DefaultConfigs()),
		Auth: AuthConfig{
			Enabled: envBoolOr("GATHER_AUTH_ENABLED", true),
			APIKeys: envSliceOr("GATHER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("GATHER_RATE_RPS", 5.0),
			Burst:             envIntOr("GATHER_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("GATHER_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("GATHER_LOG_LEVEL", "info"),
			Format: envOr("GATHER_LOG_FORMAT", "json"),
		},
	}
}

// envRelaysOr parses relay definitions from the environment. Each entry is
// "name|mode|endpoint|field|escape", entries separated by commas:
//
//	GATHER_RELAYS="mirror|json|https://relay.example/get?url=%s|contents|true,direct|direct|||false"
//
// The cascade order follows the listing order.
func envRelaysOr(key string, fallback []relay.Config) []relay.Config {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []relay.Config
	for _, part := range strings.Split(v, ",") {
		fields := strings.Split(strings.TrimSpace(part), "|")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		c := relay.Config{Name: fields[0], Mode: fields[1]}
		if len(fields) > 2 {
			c.Endpoint = fields[2]
		}
		if len(fields) > 3 {
			c.Field = fields[3]
		}
		if len(fields) > 4 {
			c.Escape, _ = strconv.ParseBool(fields[4])
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
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
