// Package config loads client configuration from an optional YAML file
// and TASKDECK_* environment variables, env winning over file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config defines client configuration.
type Config struct {
	// APIURL is the base URL of the task service.
	APIURL string `yaml:"api_url" env:"TASKDECK_API_URL"`
	// Token is the bearer token sent with every request. Empty means
	// unauthenticated.
	Token string `yaml:"token" env:"TASKDECK_TOKEN"`
	// WorkspaceID scopes task and project creation.
	WorkspaceID string `yaml:"workspace_id" env:"TASKDECK_WORKSPACE_ID"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"TASKDECK_LOG_LEVEL"`
	// File receives log output; a TUI owns stdout. Empty discards logs.
	File string `yaml:"file" env:"TASKDECK_LOG_FILE"`
}

// Load builds the configuration: defaults, then the YAML file named by
// TASKDECK_CONFIG_PATH (or the default path if it exists), then
// environment overrides.
func Load() (Config, error) {
	cfg := Config{
		APIURL: "http://localhost:8080",
		Log: LogConfig{
			Level: "info",
		},
	}

	path := os.Getenv("TASKDECK_CONFIG_PATH")
	if path == "" {
		if p, err := defaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.APIURL == "" {
		return Config{}, fmt.Errorf("api_url must not be empty")
	}

	return cfg, nil
}

// SlogLevel maps the configured level name to a slog level, defaulting
// to info for unknown names.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func defaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskdeck", "config.yaml"), nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
