package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/search"
)

var (
	flagSearchType        string
	flagSearchProjects    []string
	flagSearchTools       bool
	flagSearchErrors      bool
	flagSearchFileChanges bool
	flagSearchSince       string
	flagSearchUntil       string
	flagSearchLimit       int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search messages across all providers",
	Long: `Searches every provider's sessions for messages containing the query,
case-insensitively, descending into tool inputs and results. Results
are combined newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchType, "type", "", "Only messages of this type (user, assistant, ...)")
	searchCmd.Flags().StringSliceVar(&flagSearchProjects, "project", nil, "Only messages from these projects (repeatable)")
	searchCmd.Flags().BoolVar(&flagSearchTools, "tools", false, "Only messages with tool calls")
	searchCmd.Flags().BoolVar(&flagSearchErrors, "errors", false, "Only messages with failed tool results")
	searchCmd.Flags().BoolVar(&flagSearchFileChanges, "file-changes", false, "Only messages that create or modify files")
	searchCmd.Flags().StringVar(&flagSearchSince, "since", "", "Earliest timestamp (RFC3339 or YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&flagSearchUntil, "until", "", "Latest timestamp (RFC3339 or YYYY-MM-DD)")
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 0, "Maximum results (0 uses the configured default)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit := flagSearchLimit
	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}

	filters := &search.Filters{
		MessageType:  flagSearchType,
		ProjectNames: flagSearchProjects,
		DateStart:    flagSearchSince,
		DateEnd:      flagSearchUntil,
	}
	// Boolean filters are tri-state: only an explicitly set flag constrains.
	if cmd.Flags().Changed("tools") {
		filters.HasToolCalls = &flagSearchTools
	}
	if cmd.Flags().Changed("errors") {
		filters.HasErrors = &flagSearchErrors
	}
	if cmd.Flags().Changed("file-changes") {
		filters.HasFileChanges = &flagSearchFileChanges
	}

	results, err := newCatalog(cfg).SearchAll(args[0], filters, limit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("\n  No matches found.")
		return nil
	}

	fmt.Println()
	rows := make([][]string, 0, len(results))
	for i := range results {
		m := &results[i]
		rows = append(rows, []string{
			cli.Truncate(m.FirstText(), 48),
			m.Type,
			cli.Truncate(m.ProjectName, 20),
			cli.FormatTimestamp(m.Timestamp),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%d matches", len(results)),
		Headers: []string{"Message", "Type", "Project", "When"},
		Rows:    rows,
	}))
	return nil
}
