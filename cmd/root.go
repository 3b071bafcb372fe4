// Package cmd implements the aislog command line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/catalog"
	"github.com/theirongolddev/aislog/internal/config"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/stats"
	"github.com/theirongolddev/aislog/internal/store"
)

var (
	flagClaudeDir   string
	flagCodexDir    string
	flagOpenCodeDir string
	flagJSON        bool
	flagNoCache     bool
)

var rootCmd = &cobra.Command{
	Use:   "aislog",
	Short: "Browse, search, and analyze AI coding assistant logs",
	Long: `aislog reads the local session logs written by Claude Code, Codex CLI,
and OpenCode, and presents them as one unified catalog: projects,
sessions, messages, full-text search, and token statistics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagClaudeDir, "claude-dir", "", "Claude data directory (default ~/.claude)")
	rootCmd.PersistentFlags().StringVar(&flagCodexDir, "codex-dir", "", "Codex data directory (default ~/.codex)")
	rootCmd.PersistentFlags().StringVar(&flagOpenCodeDir, "opencode-dir", "", "OpenCode data directory")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Emit JSON instead of formatted output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the SQLite stats cache")
}

// loadConfig reads the config file and applies directory flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagClaudeDir != "" {
		cfg.Providers.ClaudeDir = flagClaudeDir
	}
	if flagCodexDir != "" {
		cfg.Providers.CodexDir = flagCodexDir
	}
	if flagOpenCodeDir != "" {
		cfg.Providers.OpenCodeDir = flagOpenCodeDir
	}
	return cfg, nil
}

func newCatalog(cfg config.Config) *catalog.Catalog {
	return catalog.New(catalog.Roots{
		Claude:   cfg.Providers.ClaudeDir,
		Codex:    cfg.Providers.CodexDir,
		OpenCode: cfg.Providers.OpenCodeDir,
	})
}

// resolvePolicy picks the policy flag value when set, otherwise the
// configured default.
func resolvePolicy(cfg config.Config, flagValue string) (stats.Policy, error) {
	s := flagValue
	if s == "" {
		s = cfg.Stats.DefaultPolicy
	}
	return stats.ParsePolicy(s)
}

func breakThreshold(cfg config.Config) time.Duration {
	minutes := cfg.Stats.BreakThresholdMinutes
	if minutes <= 0 {
		minutes = 120
	}
	return time.Duration(minutes) * time.Minute
}

// openStatsCache opens the shared cache unless disabled by flag or config.
// A cache that fails to open degrades to uncached operation.
func openStatsCache(cfg config.Config) *store.Cache {
	if flagNoCache || !cfg.Stats.UseCache {
		return nil
	}
	cache, err := store.Open(store.DefaultPath())
	if err != nil {
		return nil
	}
	return cache
}

func closeStatsCache(cache *store.Cache) {
	if cache != nil {
		_ = cache.Close()
	}
}

func parseProviderID(s string) (model.ProviderID, error) {
	id := model.ProviderID(s)
	for _, known := range model.AllProviders() {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (expected claude, codex, or opencode)", s)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
