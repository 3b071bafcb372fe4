package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/stats"
)

var (
	flagStatsPolicy   string
	flagStatsProvider string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token and activity statistics",
}

var statsGlobalCmd = &cobra.Command{
	Use:   "global",
	Short: "Aggregate statistics across every provider",
	RunE:  runStatsGlobal,
}

var statsProjectCmd = &cobra.Command{
	Use:   "project <project-path>",
	Short: "Aggregate statistics for one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatsProject,
}

func init() {
	statsCmd.PersistentFlags().StringVar(&flagStatsPolicy, "policy", "", "Counting policy: billing_total or conversation_only")
	statsProjectCmd.Flags().StringVar(&flagStatsProvider, "provider", "claude", "Provider owning the project (claude, codex, opencode)")
	statsCmd.AddCommand(statsGlobalCmd)
	statsCmd.AddCommand(statsProjectCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStatsGlobal(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg, flagStatsPolicy)
	if err != nil {
		return err
	}

	cache := openStatsCache(cfg)
	defer closeStatsCache(cache)

	threshold := breakThreshold(cfg)
	accums, err := newCatalog(cfg).GlobalAccums(policy, cache, threshold)
	if err != nil {
		return err
	}
	summary := stats.GlobalSummaryOf(accums, threshold)

	if flagJSON {
		return printJSON(summary)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("GLOBAL STATS"))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Projects", cli.FormatNumber(uint64(summary.TotalProjects))},
		{"Sessions", cli.FormatNumber(uint64(summary.TotalSessions))},
		{"Messages", cli.FormatNumber(summary.TotalMessages)},
		{"Tokens", cli.FormatTokens(summary.TotalTokens)},
		{"Distribution", cli.RenderTokenDistribution(summary.TokenDistribution)},
		{"Active time", cli.FormatMinutes(summary.TotalSessionDurationMinutes)},
		{"Date range", formatDateRange(summary.DateRange)},
	}))

	if len(summary.ProviderDistribution) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(summary.ProviderDistribution))
		for _, p := range summary.ProviderDistribution {
			rows = append(rows, []string{
				model.ProviderID(p.ProviderID).DisplayName(),
				cli.FormatNumber(uint64(p.Projects)),
				cli.FormatNumber(uint64(p.Sessions)),
				cli.FormatNumber(p.Messages),
				cli.FormatTokens(p.Tokens),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By provider",
			Headers: []string{"Provider", "Projects", "Sessions", "Messages", "Tokens"},
			Rows:    rows,
		}))
	}

	if len(summary.TopProjects) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(summary.TopProjects))
		for _, r := range summary.TopProjects {
			rows = append(rows, []string{
				cli.Truncate(r.ProjectName, 28),
				cli.FormatNumber(uint64(r.Sessions)),
				cli.FormatNumber(r.Messages),
				cli.FormatTokens(r.Tokens),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top projects",
			Headers: []string{"Project", "Sessions", "Messages", "Tokens"},
			Rows:    rows,
		}))
	}

	if len(summary.ModelDistribution) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(summary.ModelDistribution))
		for _, m := range summary.ModelDistribution {
			rows = append(rows, []string{
				cli.Truncate(m.ModelName, 32),
				cli.FormatNumber(uint64(m.MessageCount)),
				cli.FormatTokens(m.TokenCount),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By model",
			Headers: []string{"Model", "Messages", "Tokens"},
			Rows:    rows,
		}))
	}

	printActivity(summary.DailyStats, summary.ActivityHeatmap)
	return nil
}

func runStatsProject(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := parseProviderID(flagStatsProvider)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg, flagStatsPolicy)
	if err != nil {
		return err
	}

	cache := openStatsCache(cfg)
	defer closeStatsCache(cache)

	threshold := breakThreshold(cfg)
	accums, err := newCatalog(cfg).ProjectAccums(id, args[0], policy, cache, threshold)
	if err != nil {
		return err
	}

	name := args[0]
	if len(accums) > 0 && accums[0].Session.ProjectName != "" {
		name = accums[0].Session.ProjectName
	}
	summary := stats.ProjectSummaryOf(name, accums, threshold)

	if flagJSON {
		return printJSON(summary)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECT  " + cli.Truncate(summary.ProjectName, 40)))
	fmt.Println()
	fmt.Print(cli.RenderKeyValues([][2]string{
		{"Sessions", cli.FormatNumber(uint64(summary.TotalSessions))},
		{"Messages", cli.FormatNumber(summary.TotalMessages)},
		{"Tokens", cli.FormatTokens(summary.TotalTokens)},
		{"Distribution", cli.RenderTokenDistribution(summary.TokenDistribution)},
		{"Avg tokens/session", cli.FormatTokens(summary.AvgTokensPerSession)},
		{"Active time", cli.FormatMinutes(summary.TotalSessionDuration)},
		{"Avg session", cli.FormatMinutes(summary.AvgSessionDuration)},
		{"Most active hour", fmt.Sprintf("%02d:00", summary.MostActiveHour)},
	}))

	if len(summary.MostUsedTools) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(summary.MostUsedTools))
		for _, tool := range summary.MostUsedTools {
			rows = append(rows, []string{
				tool.ToolName,
				cli.FormatNumber(uint64(tool.UsageCount)),
				cli.FormatPercent(float64(tool.SuccessRate)),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Most used tools",
			Headers: []string{"Tool", "Uses", "Success"},
			Rows:    rows,
		}))
	}

	printActivity(summary.DailyStats, summary.ActivityHeatmap)
	return nil
}

func printActivity(daily []model.DailyStats, heatmap []model.ActivityHeatmapCell) {
	if len(daily) > 0 {
		values := make([]float64, len(daily))
		for i, d := range daily {
			values[i] = float64(d.TotalTokens)
		}
		fmt.Println()
		fmt.Printf("  Daily tokens  %s\n", cli.RenderSparkline(values))
		fmt.Printf("                %s .. %s\n", daily[0].Date, daily[len(daily)-1].Date)
	}
	if grid := cli.RenderHeatmap(heatmap); grid != "" {
		fmt.Println()
		fmt.Print(grid)
	}
}

func formatDateRange(r model.DateRange) string {
	if r.FirstMessage == "" {
		return "no activity"
	}
	return fmt.Sprintf("%s .. %s (%d days)",
		cli.FormatTimestamp(r.FirstMessage), cli.FormatTimestamp(r.LastMessage), r.DaysSpan)
}
