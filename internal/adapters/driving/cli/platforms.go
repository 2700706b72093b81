package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List platforms with configured credentials",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if deployOrchestrator == nil {
			return errors.New("deploy service not configured")
		}
		platforms := deployOrchestrator.Platforms()
		if len(platforms) == 0 {
			cmd.Println("No platforms configured. Set RENDER_API_KEY, RAILWAY_TOKEN, or VERCEL_TOKEN.")
			return nil
		}
		for _, p := range platforms {
			cmd.Println(string(p))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <platform> <service-id>",
	Short: "Show the state of a deployed service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if deployOrchestrator == nil {
			return errors.New("deploy service not configured")
		}
		platform, err := domain.ParsePlatform(args[0])
		if err != nil {
			return err
		}
		status, err := deployOrchestrator.Status(context.Background(), platform, args[1])
		if err != nil {
			return fmt.Errorf("status check failed: %w", err)
		}
		cmd.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(statusCmd)
}
