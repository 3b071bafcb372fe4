package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show detected log providers",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(_ *cobra.Command, _ []string) error {
	infos := provider.DetectAll()

	if flagJSON {
		return printJSON(infos)
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		state := "not found"
		if info.IsAvailable {
			state = "available"
		}
		rows = append(rows, []string{info.DisplayName, info.BasePath, state})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Provider", "Path", "Status"},
		Rows:    rows,
	}))
	return nil
}
