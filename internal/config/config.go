// Package config provides configuration loading and structs for the jcsdl server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Schema  SchemaConfig  `yaml:"schema"`
	Codec   CodecConfig   `yaml:"codec"`
	Import  ImportConfig  `yaml:"import"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the saved-document database and search index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// SchemaConfig points at the field and operator definition file.
// An empty Path selects the built-in definition.
type SchemaConfig struct {
	Path  string `yaml:"path"`
	Watch *bool  `yaml:"watch"`
}

// WatchOrDefault returns whether to reload the schema file on change; defaults to true when unset.
func (s *SchemaConfig) WatchOrDefault() bool {
	if s.Watch != nil {
		return *s.Watch
	}
	return true
}

// CodecConfig holds JCSDL encoding settings.
type CodecConfig struct {
	Hash    string `yaml:"hash" json:"hash"`
	Version string `yaml:"version" json:"version"`
}

// ImportConfig names an inbox directory whose JCSDL files are saved as documents
// while the server runs. An empty Directory disables importing.
type ImportConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	if cfg.Schema.Path != "" {
		cfg.Schema.Path = expandPath(cfg.Schema.Path, configDir)
	}
	if cfg.Import.Directory != "" {
		cfg.Import.Directory = expandPath(cfg.Import.Directory, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
