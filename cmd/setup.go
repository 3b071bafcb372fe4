package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return tui.RunSetup()
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
