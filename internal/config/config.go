// Package config loads and saves the aislog TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all aislog configuration.
type Config struct {
	Providers ProvidersConfig `toml:"providers"`
	Stats     StatsConfig     `toml:"stats"`
	Search    SearchConfig    `toml:"search"`
}

// ProvidersConfig overrides the provider data directories. Empty values fall
// back to the default install locations.
type ProvidersConfig struct {
	ClaudeDir   string `toml:"claude_dir,omitempty"`
	CodexDir    string `toml:"codex_dir,omitempty"`
	OpenCodeDir string `toml:"opencode_dir,omitempty"`
}

// StatsConfig holds statistics preferences.
type StatsConfig struct {
	DefaultPolicy         string `toml:"default_policy"`
	BreakThresholdMinutes int    `toml:"break_threshold_minutes"`
	UseCache              bool   `toml:"use_cache"`
}

// SearchConfig holds search preferences.
type SearchConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Stats: StatsConfig{
			DefaultPolicy:         "billing_total",
			BreakThresholdMinutes: 120,
			UseCache:              true,
		},
		Search: SearchConfig{
			DefaultLimit: 50,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aislog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aislog")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes the config to an explicit path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
