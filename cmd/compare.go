package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/stats"
)

var (
	flagCompareProvider string
	flagComparePolicy   string
)

var compareCmd = &cobra.Command{
	Use:   "compare <session-id> <project-path>",
	Short: "Rank one session against its project siblings",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&flagCompareProvider, "provider", "claude", "Provider owning the project (claude, codex, opencode)")
	compareCmd.Flags().StringVar(&flagComparePolicy, "policy", "", "Counting policy: billing_total or conversation_only")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := parseProviderID(flagCompareProvider)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg, flagComparePolicy)
	if err != nil {
		return err
	}

	sessions, err := newCatalog(cfg).ProjectSessions(id, args[1])
	if err != nil {
		return err
	}

	cmp, err := stats.CompareSession(args[0], sessions, policy, breakThreshold(cfg))
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmp)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SESSION  " + cli.Truncate(cmp.SessionID, 40)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Share of project tokens", cli.FormatPercent(float64(cmp.PercentOfTokens) / 100)},
		{"Share of project messages", cli.FormatPercent(float64(cmp.PercentOfMessages) / 100)},
		{"Rank by tokens", fmt.Sprintf("%d of %d", cmp.RankByTokens, cmp.ProjectSessionsTotal)},
		{"Rank by duration", fmt.Sprintf("%d of %d", cmp.RankByDuration, cmp.ProjectSessionsTotal)},
		{"Above average", fmt.Sprintf("%t", cmp.IsAboveAverage)},
	}))
	return nil
}
