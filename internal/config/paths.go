package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the Keywarden data directory.
// - Windows: %APPDATA%\keywarden
// - Other OS: ~/.keywarden
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "keywarden")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".keywarden"
	}
	return filepath.Join(home, ".keywarden")
}

// DBPath returns the path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "keywarden.db")
}

// ConfigPath returns the path to the config file (~/.keywarden/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
