package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/stats"
)

var (
	flagTokensProvider string
	flagTokensPolicy   string
	flagTokensOffset   int
	flagTokensLimit    int
	flagTokensSince    string
	flagTokensUntil    string
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <project-path>",
	Short: "Rank one project's sessions by token usage",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().StringVar(&flagTokensProvider, "provider", "claude", "Provider owning the project (claude, codex, opencode)")
	tokensCmd.Flags().StringVar(&flagTokensPolicy, "policy", "", "Counting policy: billing_total or conversation_only")
	tokensCmd.Flags().IntVar(&flagTokensOffset, "offset", 0, "Sessions to skip")
	tokensCmd.Flags().IntVar(&flagTokensLimit, "limit", 20, "Sessions per page")
	tokensCmd.Flags().StringVar(&flagTokensSince, "since", "", "Only sessions active on or after this date")
	tokensCmd.Flags().StringVar(&flagTokensUntil, "until", "", "Only sessions active on or before this date")
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := parseProviderID(flagTokensProvider)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg, flagTokensPolicy)
	if err != nil {
		return err
	}

	since, err := parseTimeBound(flagTokensSince, false)
	if err != nil {
		return err
	}
	until, err := parseTimeBound(flagTokensUntil, true)
	if err != nil {
		return err
	}
	if since != nil && until != nil && since.After(*until) {
		return fmt.Errorf("--since is after --until")
	}

	sessions, err := newCatalog(cfg).ProjectSessions(id, args[0])
	if err != nil {
		return err
	}

	page := stats.TokenRanking(sessions, policy, breakThreshold(cfg), since, until, flagTokensOffset, flagTokensLimit)

	if flagJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("\n  No sessions in the selected range.")
		return nil
	}

	rows := make([][]string, 0, len(page.Items))
	for _, s := range page.Items {
		rows = append(rows, []string{
			cli.Truncate(s.SessionID, 36),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatNumber(uint64(s.MessageCount)),
			cli.FormatMinutes(s.DurationMinutes),
			cli.FormatTimestamp(s.LastMessageAt),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Sessions by tokens  %d-%d of %d", page.Offset+1, page.Offset+len(page.Items), page.TotalCount),
		Headers: []string{"Session", "Tokens", "Messages", "Duration", "Last Message"},
		Rows:    rows,
	}))
	return nil
}

// parseTimeBound accepts RFC3339 timestamps or bare dates. A bare date used
// as the end bound covers the whole day. Empty input means unbounded.
func parseTimeBound(s string, isEnd bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse date %q", s)
	}
	if isEnd {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
