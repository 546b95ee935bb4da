// Package config loads and validates gateway configuration from
// environment variables.
package config

import (
	"os"
	"strings"
)

// Config holds all configuration values for the gateway.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Optional: when empty
	// the gateway runs on the in-memory backend, which is the reference
	// configuration for a single process and loses state on restart.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"].
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// AppPassHash is the sha256 hex of the shared app-gate password.
	// Empty means the gate admits everyone. That fallback mirrors the
	// reference deployment and is a documented open question, not an
	// endorsement.
	AppPassHash string
}

// Load reads configuration from environment variables and returns a Config.
// Nothing is required: the zero-dependency default is an in-memory gateway
// on :8080.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		AppPassHash: strings.ToLower(os.Getenv("APP_PASS_HASH")),
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
