package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/provider"
	"github.com/theirongolddev/aislog/internal/provider/claude"
)

var flagEditsShow string

var editsCmd = &cobra.Command{
	Use:   "edits <project-path>",
	Short: "List recoverable file edits recorded in a Claude project",
	Long: `Scans a project's session logs for Edit and Write tool results and
reconstructs the latest recorded content per file. Use --show to print
one file's reconstructed content; redirect it to restore the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdits,
}

func init() {
	editsCmd.Flags().StringVar(&flagEditsShow, "show", "", "Print the reconstructed content of this file path")
	rootCmd.AddCommand(editsCmd)
}

func runEdits(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := cfg.Providers.ClaudeDir
	if root == "" {
		root = provider.ClaudeRoot()
	}

	result, err := claude.New(root).RecentEdits(args[0])
	if err != nil {
		return err
	}

	if flagEditsShow != "" {
		for _, e := range result.Files {
			if e.FilePath == flagEditsShow {
				fmt.Print(e.Content)
				return nil
			}
		}
		return fmt.Errorf("no recorded edit for %s", flagEditsShow)
	}

	if flagJSON {
		return printJSON(result)
	}

	if len(result.Files) == 0 {
		fmt.Println("\n  No recoverable edits found.")
		return nil
	}

	fmt.Println()
	if result.ProjectCwd != "" {
		fmt.Printf("  Project directory: %s\n", result.ProjectCwd)
	}
	fmt.Printf("  %d edits across %d files\n\n", result.TotalEdits, result.UniqueFiles)

	rows := make([][]string, 0, len(result.Files))
	for _, e := range result.Files {
		rows = append(rows, []string{
			cli.Truncate(e.FilePath, 56),
			e.Operation,
			fmt.Sprintf("+%d/-%d", e.LinesAdded, e.LinesRemoved),
			cli.FormatTimestamp(e.Timestamp),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"File", "Op", "Lines", "When"},
		Rows:    rows,
	}))
	return nil
}
