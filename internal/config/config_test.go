package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cosmosquiz/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                  ":8080",
		DBPath:                "test.db",
		LogLevel:              "INFO",
		CompletionWorkerCount: 1,
		CompletionQueueSize:   32,
		SeedSamples:           true,
		CORSOrigins:           []string{"http://localhost:3000"},
		RateLimitRPS:          10,
		RateLimitBurst:        20,
		MatchMismatchDelay:    time.Second,
		SessionIdleTimeout:    30 * time.Minute,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = "  "

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.LogLevel = "TRACE" },
			wantMsg: "LOG_LEVEL",
		},
		{
			name:    "no completion workers",
			mutate:  func(c *config.Config) { c.CompletionWorkerCount = 0 },
			wantMsg: "COMPLETION_WORKER_COUNT",
		},
		{
			name:    "no completion queue",
			mutate:  func(c *config.Config) { c.CompletionQueueSize = -1 },
			wantMsg: "COMPLETION_QUEUE_SIZE",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *config.Config) { c.RateLimitRPS = 0 },
			wantMsg: "RATE_LIMIT_RPS",
		},
		{
			name:    "zero burst",
			mutate:  func(c *config.Config) { c.RateLimitBurst = 0 },
			wantMsg: "RATE_LIMIT_BURST",
		},
		{
			name:    "negative mismatch delay",
			mutate:  func(c *config.Config) { c.MatchMismatchDelay = -time.Second },
			wantMsg: "MATCH_MISMATCH_DELAY",
		},
		{
			name:    "tiny idle timeout",
			mutate:  func(c *config.Config) { c.SessionIdleTimeout = time.Second },
			wantMsg: "SESSION_IDLE_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"DEBUG", "info", "WARN", "warning", "ERROR"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("SEED_SAMPLES", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MATCH_MISMATCH_DELAY", "750ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.False(t, cfg.SeedSamples)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 750*time.Millisecond, cfg.MatchMismatchDelay)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("COMPLETION_WORKER_COUNT", "many")
	t.Setenv("SESSION_IDLE_TIMEOUT", "forever")
	t.Setenv("SEED_SAMPLES", "perhaps")

	cfg := config.Load()

	assert.Equal(t, 1, cfg.CompletionWorkerCount)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.True(t, cfg.SeedSamples)
}
