package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Addr        string
	DatabaseDSN string
	JWTSecret   string
	RedisAddr   string // empty disables the Redis chat relay
	LogLevel    string
}

// Load loads configuration from environment variables.
// A .env file is used when present (local dev), real env vars win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      getEnvOrDefault("ADDR", ":8080"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseDSN = os.Getenv("DB_DSN"); cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DB_DSN environment variable is required")
	}

	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
