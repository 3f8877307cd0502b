// Package config loads the daemon configuration: gate policy knobs,
// path restriction settings, timeouts, and data file locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"shellgate/internal/policy"
)

// Config holds all configurable daemon parameters.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	AutoMode   string `yaml:"auto_mode"`
	LogLevel   string `yaml:"log_level"`

	RestrictedMode   bool   `yaml:"restricted_mode"`
	AllowedDirectory string `yaml:"allowed_directory"`
	AllowParentRead  bool   `yaml:"allow_parent_read"`
	WorkingDirectory string `yaml:"working_directory"`

	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`
	ConfirmTimeoutSeconds int `yaml:"confirm_timeout_seconds"`
	CacheSize             int `yaml:"cache_size"`

	RulesPath string `yaml:"rules_path"`
	AuditLog  string `yaml:"audit_log"`
	HistoryDB string `yaml:"history_db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:            "127.0.0.1:5000",
		AutoMode:              string(policy.ModeManual),
		LogLevel:              "info",
		AllowParentRead:       true,
		CommandTimeoutSeconds: 30,
		ConfirmTimeoutSeconds: 300,
		CacheSize:             1000,
		AuditLog:              defaultPath("audit.jsonl"),
		HistoryDB:             defaultPath("history.db"),
	}
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".shellgate", name)
}

// Load loads configuration from a YAML file.
// Empty path falls back to ~/.shellgate/config.yaml.
// Missing file returns defaults. Invalid YAML or values return an error.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, ".shellgate", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the daemon cannot run with.
func (c *Config) Validate() error {
	if _, err := policy.ParseAutoMode(c.AutoMode); err != nil {
		return err
	}
	if c.CommandTimeoutSeconds <= 0 {
		return fmt.Errorf("config: command_timeout_seconds must be positive, got %d", c.CommandTimeoutSeconds)
	}
	if c.ConfirmTimeoutSeconds <= 0 {
		return fmt.Errorf("config: confirm_timeout_seconds must be positive, got %d", c.ConfirmTimeoutSeconds)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("config: cache_size must be positive, got %d", c.CacheSize)
	}
	if c.RestrictedMode && c.AllowedDirectory == "" {
		return fmt.Errorf("config: restricted_mode requires allowed_directory")
	}
	return nil
}

// CommandTimeout returns the configured execution window.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// ConfirmTimeout returns the configured confirmation window.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutSeconds) * time.Second
}
