package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
)

var flagSessionsProvider string

var sessionsCmd = &cobra.Command{
	Use:   "sessions <project-path>",
	Short: "List one project's sessions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().StringVar(&flagSessionsProvider, "provider", "claude", "Provider owning the project (claude, codex, opencode)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := parseProviderID(flagSessionsProvider)
	if err != nil {
		return err
	}

	sessions, err := newCatalog(cfg).LoadSessions(id, args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		title := s.Summary
		if title == "" {
			title = s.SessionID
		}
		flags := ""
		if s.HasToolUse {
			flags += "T"
		}
		if s.HasErrors {
			flags += "E"
		}
		rows = append(rows, []string{
			cli.Truncate(title, 40),
			cli.FormatNumber(uint64(s.MessageCount)),
			flags,
			cli.FormatTimestamp(s.LastMessageAt),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Session", "Messages", "Flags", "Last Message"},
		Rows:    rows,
	}))
	return nil
}
