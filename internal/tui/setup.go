package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/aislog/internal/config"
	"github.com/theirongolddev/aislog/internal/provider"
)

// RunSetup walks the first-run form and saves the resulting config. Detected
// provider roots are shown as placeholders; blank answers keep the defaults.
func RunSetup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Claude data directory").
				Description(fmt.Sprintf("default: %s", provider.ClaudeRoot())).
				Value(&cfg.Providers.ClaudeDir),
			huh.NewInput().
				Title("Codex data directory").
				Description(fmt.Sprintf("default: %s", provider.CodexRoot())).
				Value(&cfg.Providers.CodexDir),
			huh.NewInput().
				Title("OpenCode data directory").
				Description(fmt.Sprintf("default: %s", provider.OpenCodeRoot())).
				Value(&cfg.Providers.OpenCodeDir),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default stats policy").
				Options(
					huh.NewOption("Billing total (all usage-bearing records)", "billing_total"),
					huh.NewOption("Conversation only (user and assistant turns)", "conversation_only"),
				).
				Value(&cfg.Stats.DefaultPolicy),
			huh.NewConfirm().
				Title("Cache parsed stats in SQLite?").
				Value(&cfg.Stats.UseCache),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Saved %s\n", config.ConfigPath())
	return nil
}
