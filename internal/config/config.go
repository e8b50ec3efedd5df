package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const devSecret = "dev-secret-change-in-production"

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string
	// BaseURL is the externally visible origin, used to build reset links.
	BaseURL string
	// SecretKey signs session carriers, auxiliary cookies, and reset tokens.
	SecretKey string
	// RedisAddr, when set, moves rate-limit counters to a shared cache.
	RedisAddr string

	RateLimitAttempts int
	RateLimitWindow   time.Duration
	ResetTokenTTL     time.Duration
}

func Load() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/centsible?parseTime=true"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		SecretKey:         getEnv("SECRET_KEY", devSecret),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RateLimitAttempts: getEnvInt("RATE_LIMIT_ATTEMPTS", 10),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 3*time.Minute),
		ResetTokenTTL:     getEnvDuration("RESET_TOKEN_TTL", 24*time.Hour),
	}

	if cfg.Env == "production" && cfg.SecretKey == devSecret {
		slog.Error("SECRET_KEY must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

// Production reports whether cookies should be marked transport-secure-only.
func (c Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring non-integer env value", "key", key, "value", v)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("ignoring non-duration env value", "key", key, "value", v)
	}
	return fallback
}
