package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/model"
)

var (
	flagMessagesProvider string
	flagMessagesOffset   int
	flagMessagesLimit    int
)

var messagesCmd = &cobra.Command{
	Use:   "messages <session-path>",
	Short: "Show one page of a session's messages",
	Long: `Shows one page of a session in chat order. Offset 0 is the page ending
at the newest message; increase it to walk back through history.`,
	Args: cobra.ExactArgs(1),
	RunE: runMessages,
}

func init() {
	messagesCmd.Flags().StringVar(&flagMessagesProvider, "provider", "claude", "Provider owning the session (claude, codex, opencode)")
	messagesCmd.Flags().IntVar(&flagMessagesOffset, "offset", 0, "Messages to skip from the end of the session")
	messagesCmd.Flags().IntVar(&flagMessagesLimit, "limit", 50, "Messages per page")
	rootCmd.AddCommand(messagesCmd)
}

func runMessages(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := parseProviderID(flagMessagesProvider)
	if err != nil {
		return err
	}

	page, err := newCatalog(cfg).LoadMessages(id, args[0], flagMessagesOffset, flagMessagesLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(page)
	}

	if len(page.Items) == 0 {
		fmt.Println("\n  No messages found.")
		return nil
	}

	fmt.Println()
	if page.HasMore {
		fmt.Printf("  ... %d earlier messages\n\n", page.TotalCount-page.Offset-len(page.Items))
	}
	for i := range page.Items {
		printMessage(&page.Items[i])
	}
	fmt.Printf("  %d of %d messages (offset %d)\n", len(page.Items), page.TotalCount, page.Offset)
	return nil
}

func printMessage(m *model.Message) {
	header := m.Type
	if m.Timestamp != "" {
		header += "  " + cli.FormatTimestamp(m.Timestamp)
	}
	if m.Model != "" {
		header += "  " + m.Model
	}
	fmt.Printf("  %s\n", header)

	if m.Content == nil {
		fmt.Println()
		return
	}
	if !m.Content.IsBlocks() {
		printIndented(m.Content.Text)
		fmt.Println()
		return
	}
	for _, block := range m.Content.Blocks {
		switch block.Type {
		case model.BlockText:
			printIndented(block.Text)
		case model.BlockToolUse:
			fmt.Printf("    -> %s\n", block.Name)
		case model.BlockToolResult:
			if s, ok := block.Content.(string); ok {
				printIndented(cli.Truncate(s, 200))
			}
		case model.BlockThinking:
			printIndented(cli.Truncate(block.Thinking, 200))
		}
	}
	fmt.Println()
}

func printIndented(text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Printf("    %s\n", line)
	}
}
