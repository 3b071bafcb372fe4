package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cfg)
	}

	source := config.ConfigPath()
	if !config.Exists() {
		source += " (not present, showing defaults)"
	}

	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Config file", source},
		{"Claude dir", orDefault(cfg.Providers.ClaudeDir)},
		{"Codex dir", orDefault(cfg.Providers.CodexDir)},
		{"OpenCode dir", orDefault(cfg.Providers.OpenCodeDir)},
		{"Default policy", cfg.Stats.DefaultPolicy},
		{"Break threshold", fmt.Sprintf("%d min", cfg.Stats.BreakThresholdMinutes)},
		{"Stats cache", fmt.Sprintf("%t", cfg.Stats.UseCache)},
		{"Search limit", fmt.Sprintf("%d", cfg.Search.DefaultLimit)},
	}))
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config already exists at %s", config.ConfigPath())
	}
	if err := config.Save(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", config.ConfigPath())
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(auto-detect)"
	}
	return s
}
