package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects across all providers",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projects, err := newCatalog(cfg).ScanAllProjects()
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(projects)
	}

	if len(projects) == 0 {
		fmt.Println("\n  No projects found.")
		return nil
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			cli.Truncate(p.Name, 28),
			p.Provider.DisplayName(),
			cli.FormatNumber(uint64(p.SessionCount)),
			cli.FormatTimestamp(p.LastActivity),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Provider", "Sessions", "Last Activity"},
		Rows:    rows,
	}))
	return nil
}
