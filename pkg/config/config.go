// Package config loads the application configuration from a YAML file with
// environment variable overrides for anything deployment-specific.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment override names.
const (
	EnvAPIBaseURL = "DREAMWEAVE_API_BASE_URL"
	EnvMirrorURL  = "DREAMWEAVE_MIRROR_URL"
	EnvMirrorKey  = "DREAMWEAVE_MIRROR_KEY"
	EnvDBPath     = "DREAMWEAVE_DB_PATH"
)

// Config is the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Privacy PrivacyConfig `yaml:"privacy"`
	DB      DBConfig      `yaml:"db"`
}

// APIConfig points at the image generation API.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// MirrorConfig enables the optional remote backup when both fields are set.
type MirrorConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// PrivacyConfig holds data retention defaults.
type PrivacyConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// DBConfig points at the SQLite database file.
type DBConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8787",
			TimeoutSeconds: 60,
		},
		Privacy: PrivacyConfig{
			RetentionDays: 365,
		},
	}
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist, then applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvMirrorURL); v != "" {
		cfg.Mirror.URL = v
	}
	if v := os.Getenv(EnvMirrorKey); v != "" {
		cfg.Mirror.APIKey = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
}

// Validate rejects configurations the rest of the application cannot run
// with.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.Privacy.RetentionDays <= 0 {
		return fmt.Errorf("privacy.retention_days must be positive, got %d", c.Privacy.RetentionDays)
	}
	if (c.Mirror.URL == "") != (c.Mirror.APIKey == "") {
		return errors.New("mirror.url and mirror.api_key must be set together")
	}
	return nil
}
