package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string
	JWTSecret   string

	// DefaultVisitRadiusM applies when a destination has no radius of its own.
	DefaultVisitRadiusM float64

	CheckInRateLimit time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "12345"),

		DefaultVisitRadiusM: 100,
	}

	var err error
	cfg.CheckInRateLimit, err = time.ParseDuration(getEnv("CHECKIN_RATE_LIMIT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_RATE_LIMIT: %w", err)
	}

	if raw := os.Getenv("DEFAULT_VISIT_RADIUS_M"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%f", &cfg.DefaultVisitRadiusM); err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_VISIT_RADIUS_M: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
