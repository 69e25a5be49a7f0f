package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DBPath                string
	LogLevel              string
	CompletionWorkerCount int
	CompletionQueueSize   int
	SeedSamples           bool
	CORSOrigins           []string
	RateLimitRPS          float64
	RateLimitBurst        int
	MatchMismatchDelay    time.Duration
	SessionIdleTimeout    time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:cosmos.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		CompletionWorkerCount: envIntOr("COMPLETION_WORKER_COUNT", 1),
		CompletionQueueSize:   envIntOr("COMPLETION_QUEUE_SIZE", 32),
		SeedSamples:           envBoolOr("SEED_SAMPLES", true),
		CORSOrigins:           envListOr("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitRPS:          envFloatOr("RATE_LIMIT_RPS", 10),
		RateLimitBurst:        envIntOr("RATE_LIMIT_BURST", 20),
		MatchMismatchDelay:    envDurationOr("MATCH_MISMATCH_DELAY", time.Second),
		SessionIdleTimeout:    envDurationOr("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// Validate reports the first configuration value that cannot be used.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel)
	}
	if c.CompletionWorkerCount < 1 {
		return fmt.Errorf("COMPLETION_WORKER_COUNT must be at least 1 (got %d)", c.CompletionWorkerCount)
	}
	if c.CompletionQueueSize < 1 {
		return fmt.Errorf("COMPLETION_QUEUE_SIZE must be at least 1 (got %d)", c.CompletionQueueSize)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive (got %v)", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 (got %d)", c.RateLimitBurst)
	}
	if c.MatchMismatchDelay < 0 {
		return fmt.Errorf("MATCH_MISMATCH_DELAY cannot be negative (got %v)", c.MatchMismatchDelay)
	}
	if c.SessionIdleTimeout < time.Minute {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be at least 1m (got %v)", c.SessionIdleTimeout)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
