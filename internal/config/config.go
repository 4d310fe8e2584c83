package config

import (
	"os"
	"strconv"
)

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → config.toml → defaults
type Config struct {
	// ListenAddr is the address to bind the server to (e.g., ":8080")
	ListenAddr string

	// DBPath is the SQLite database location
	DBPath string

	// DigestKey is the server-side key material for secret digests.
	// Empty means derive from the environment/machine.
	DigestKey string

	// CacheTTLSeconds bounds validator read-cache staleness
	CacheTTLSeconds int

	// LogLevel is one of debug/info/warn/error
	LogLevel string
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, _ := LoadFile() // Ignore error, use defaults

	return &Config{
		ListenAddr:      getEnvOrFile("KEYWARDEN_LISTEN_ADDR", fileConfig.ListenAddr, ":8080"),
		DBPath:          getEnvOrFile("KEYWARDEN_DB_PATH", fileConfig.DBPath, DBPath()),
		DigestKey:       getEnvOrFile("KEYWARDEN_DIGEST_KEY", fileConfig.DigestKey, ""),
		CacheTTLSeconds: getEnvIntOrFile("KEYWARDEN_CACHE_TTL", fileConfig.CacheTTLSeconds, 5),
		LogLevel:        getEnvOrFile("KEYWARDEN_LOG_LEVEL", fileConfig.LogLevel, "info"),
	}
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvIntOrFile returns env int, file int, or default (in priority order)
func getEnvIntOrFile(key string, fileValue *int, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}
