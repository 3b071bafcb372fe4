package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/tui"
)

var flagBrowseTheme string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse projects, sessions, and messages interactively",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&flagBrowseTheme, "theme", "", "Color theme (flexoki-dark, terminal)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := tui.NewApp(newCatalog(cfg), tui.ByName(flagBrowseTheme))
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
