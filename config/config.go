// Package config loads the server's operational settings from the
// environment. A .env file in the working directory is honored when
// present; real environment variables win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds server-level settings. Tax configuration is not here: it
// lives in the store and the taxes.Service, managed through the API.
type Config struct {
	// HTTP
	Port        int
	CORSOrigins []string

	// Storage
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may come from the shell or deploy.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return &Config{
		Port:        port,
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		DBPath:      getEnv("DB_PATH", "gastroboard.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
