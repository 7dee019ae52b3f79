package config

import "github.com/hyperjump/jcsdl/internal/digest"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/jcsdl/data/db/documents.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/jcsdl/data/indices/bleve"
	}
	if cfg.Codec.Hash == "" {
		cfg.Codec.Hash = digest.NameMD5
	}
	if cfg.Codec.Version == "" {
		cfg.Codec.Version = "1.0"
	}
	// Watch defaults to true when a schema file is configured.
	if cfg.Schema.Path != "" && cfg.Schema.Watch == nil {
		t := true
		cfg.Schema.Watch = &t
	}
	if cfg.Import.Directory != "" && len(cfg.Import.Extensions) == 0 {
		cfg.Import.Extensions = []string{".jcsdl"}
	}
}
