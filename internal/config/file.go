package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	DBPath          string `toml:"db_path"`
	DigestKey       string `toml:"digest_key"`
	CacheTTLSeconds *int   `toml:"cache_ttl_seconds"`
	LogLevel        string `toml:"log_level"`
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
