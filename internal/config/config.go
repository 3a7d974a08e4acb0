// Package config loads server configuration from the environment.
// A .env file is honored when present so local development does not
// require exporting variables by hand.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rtirumala2025/petsync/internal/merge"
)

// Config holds the petsyncd server configuration.
type Config struct {
	ServerPort       string
	DatabasePath     string
	RedisURL         string // optional, enables cross-instance notifications
	JWTSecret        string
	MergeGranularity merge.Granularity
	LogLevel         string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
}

// Load reads configuration from the environment, applying defaults and
// validating required fields.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set env directly.
	_ = godotenv.Load()

	accessTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL: %w", err)
	}
	refreshTTL, err := time.ParseDuration(getEnv("REFRESH_TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL: %w", err)
	}

	granularity := merge.Granularity(getEnv("MERGE_GRANULARITY", string(merge.FieldLevel)))
	if granularity != merge.FieldLevel && granularity != merge.SnapshotLevel {
		return nil, fmt.Errorf("invalid MERGE_GRANULARITY %q: must be %q or %q",
			granularity, merge.FieldLevel, merge.SnapshotLevel)
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "petsync.db"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		MergeGranularity: granularity,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
