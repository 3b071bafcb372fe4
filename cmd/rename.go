package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/provider"
	"github.com/theirongolddev/aislog/internal/provider/claude"
)

var renameCmd = &cobra.Command{
	Use:   "rename <session-file> <title>",
	Short: "Retitle a Claude session",
	Long: `Retitles a Claude session by prefixing its first user message with
"[title] ". An existing bracket prefix is replaced; an empty title
removes it. Only Claude sessions support renaming.`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := cfg.Providers.ClaudeDir
	if root == "" {
		root = provider.ClaudeRoot()
	}

	result, err := claude.New(root).RenameSessionTitle(args[0], args[1])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(result)
	}

	fmt.Printf("  Renamed %s\n", result.FilePath)
	fmt.Printf("  %s -> %s\n", cli.Truncate(result.PreviousTitle, 60), cli.Truncate(result.NewTitle, 60))
	return nil
}
