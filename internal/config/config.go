// Package config provides configuration loading and structs for the sheetserve server.
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
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig holds the data directory and pagination settings.
type DataConfig struct {
	// Directory is the sandboxed root all filenames resolve inside.
	Directory string `yaml:"directory"`
	// PageSize is the fixed number of physical data rows per page.
	PageSize int `yaml:"page_size"`
	// Watch enables change logging for the data directory.
	Watch *bool `yaml:"watch"`
}

// WatchOrDefault returns whether to watch the data directory; defaults to true when unset.
func (d *DataConfig) WatchOrDefault() bool {
	if d.Watch != nil {
		return *d.Watch
	}
	return true
}

// AuthConfig holds bearer-token authentication settings.
type AuthConfig struct {
	// APIKey is the bearer token clients must present. The API_KEY
	// environment variable overrides it.
	APIKey string `yaml:"api_key"`
	// Disabled turns authentication off. Leaving APIKey empty without
	// setting Disabled is a startup error, not an open server.
	Disabled bool `yaml:"disabled"`
}

// Validate rejects the ambiguous configuration of auth enabled with no
// key to check against.
func (a *AuthConfig) Validate() error {
	if !a.Disabled && a.APIKey == "" {
		return fmt.Errorf("auth enabled but no api_key configured (set API_KEY or auth.disabled: true)")
	}
	return nil
}

// RateLimitConfig holds per-client-IP request limits.
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowMinutes int `yaml:"window_minutes"`
}

// Load reads and parses the config file at path, applies defaults,
// expands the data directory, and overlays the API_KEY environment
// override. Returns an error if the file cannot be read or parsed.
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
	cfg.Data.Directory = expandPath(cfg.Data.Directory, filepath.Dir(path))
	applyEnv(&cfg)

	return &cfg, nil
}

// applyEnv overlays environment variables onto cfg. Only the API key is
// environment-driven; everything else lives in the file.
func applyEnv(cfg *Config) {
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.Auth.APIKey = key
	}
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
