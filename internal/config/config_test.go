package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Stats.DefaultPolicy != "billing_total" {
		t.Errorf("DefaultPolicy = %q", cfg.Stats.DefaultPolicy)
	}
	if cfg.Stats.BreakThresholdMinutes != 120 {
		t.Errorf("BreakThresholdMinutes = %d", cfg.Stats.BreakThresholdMinutes)
	}
	if cfg.Search.DefaultLimit != 50 {
		t.Errorf("DefaultLimit = %d", cfg.Search.DefaultLimit)
	}
	if !cfg.Stats.UseCache {
		t.Error("UseCache should default on")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Providers.ClaudeDir = "/data/claude"
	cfg.Stats.DefaultPolicy = "conversation_only"
	cfg.Search.DefaultLimit = 25

	if err := SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != cfg {
		t.Errorf("round trip = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[providers]\nclaude_dir = \"/data/claude\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.ClaudeDir != "/data/claude" {
		t.Errorf("ClaudeDir = %q", cfg.Providers.ClaudeDir)
	}
	if cfg.Stats.BreakThresholdMinutes != 120 {
		t.Errorf("partial file clobbered defaults: %+v", cfg)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}
