package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchRepo string

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Mirror local edits to the deployment repository",
	Long: `Watches the project directory and uploads changed files to the
source repository. The hosting platform redeploys on push, so saving a
file redeploys the application. Interrupt to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchRepo, "repo", "r", "", "repository full name (owner/name)")
	_ = watchCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watcher == nil {
		return errors.New("watch service not configured")
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := watcher.Watch(ctx, path, watchRepo)
	if errors.Is(err, context.Canceled) {
		cmd.Println("\nStopped.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
