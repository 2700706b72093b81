package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past deployments",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployment records, most recent first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one deployment record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a deployment record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyStore == nil {
			return errors.New("history store not configured")
		}
		if err := historyStore.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting %s: %w", args[0], err)
		}
		cmd.Printf("%s removed\n", args[0])
		return nil
	},
}

func init() {
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyStore == nil {
		return errors.New("history store not configured")
	}

	deployments, err := historyStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing deployments: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, deployments)
	}
	if len(deployments) == 0 {
		cmd.Println("No deployments recorded.")
		return nil
	}
	for _, d := range deployments {
		outcome := "failed"
		if d.Succeeded() {
			outcome = "succeeded"
		}
		cmd.Printf("%s  %-10s %-8s %-9s %s\n",
			d.CreatedAt.Format("2006-01-02 15:04"), d.AppName, d.Platform, outcome, d.ID)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyStore == nil {
		return errors.New("history store not configured")
	}

	d, err := historyStore.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	if historyJSON {
		return outputJSON(cmd, d)
	}
	cmd.Printf("%s (%s on %s)\n", d.AppName, d.ID, d.Platform)
	cmd.Printf("Started:  %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
	if !d.CompletedAt.IsZero() {
		cmd.Printf("Finished: %s\n", d.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	for _, step := range d.Steps {
		cmd.Printf("  %s %s", stepGlyph(step.Status), stepLabel(step.Name))
		if step.Detail != "" {
			cmd.Printf(": %s", step.Detail)
		}
		cmd.Println()
	}
	printDeploymentSummary(cmd, d)
	return nil
}
