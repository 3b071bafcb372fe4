package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aislog/internal/cli"
	"github.com/theirongolddev/aislog/internal/provider"
	"github.com/theirongolddev/aislog/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the Claude projects tree for session changes",
	Long: `Watches the Claude projects directory and prints one line per session
file change until interrupted. Only Claude sessions are observable
this way; the other providers have no single append-only tree.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := cfg.Providers.ClaudeDir
	if root == "" {
		root = provider.ClaudeRoot()
	}

	w, err := watch.New(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("  Watching %s (ctrl+c to stop)\n", root)

	go func() {
		for ev := range w.Events() {
			fmt.Printf("  %s  %s\n", cli.Truncate(ev.ProjectPath, 48), ev.SessionPath)
		}
	}()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
