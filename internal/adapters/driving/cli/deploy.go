package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driving/tui"
	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
)

var (
	deployName     string
	deployPlatform string
	deployPrivate  bool
	deployNoVerify bool
	deployJSON     bool
	deployPlain    bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy [path]",
	Short: "Deploy a project end to end",
	Long: `Runs the full deployment pipeline on the project at path
(default: the current directory): validate, create repository, deploy,
then monitoring, domain, email, and verification.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployName, "name", "n", "", "application name (default: directory name)")
	deployCmd.Flags().StringVarP(&deployPlatform, "platform", "p", "render", "hosting platform (render, railway, vercel)")
	deployCmd.Flags().BoolVar(&deployPrivate, "private", false, "create the repository as private")
	deployCmd.Flags().BoolVar(&deployNoVerify, "no-verify", false, "skip post-deploy verification")
	deployCmd.Flags().BoolVar(&deployJSON, "json", false, "output the deployment record as JSON")
	deployCmd.Flags().BoolVar(&deployPlain, "plain", false, "plain progress output, no TUI")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	if deployOrchestrator == nil {
		return errors.New("deploy service not configured")
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	platform, err := domain.ParsePlatform(deployPlatform)
	if err != nil {
		return err
	}

	req := driving.DeployRequest{
		Path:        path,
		AppName:     deployName,
		Platform:    platform,
		PrivateRepo: deployPrivate,
		SkipVerify:  deployNoVerify,
	}

	ctx := context.Background()
	var d *domain.Deployment

	switch {
	case deployJSON:
		d, err = deployOrchestrator.Deploy(ctx, req)
	case !deployPlain && term.IsTerminal(int(os.Stdout.Fd())):
		d, err = tui.RunDeploy(ctx, deployOrchestrator, req)
	default:
		req.Progress = func(step domain.StepResult) {
			cmd.Printf("  %s %s", stepGlyph(step.Status), stepLabel(step.Name))
			if step.Detail != "" {
				cmd.Printf(": %s", step.Detail)
			}
			if step.Err != "" {
				cmd.Printf(" (%s)", step.Err)
			}
			cmd.Println()
		}
		cmd.Printf("Deploying %s to %s...\n", path, platform)
		d, err = deployOrchestrator.Deploy(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	if deployJSON {
		return outputJSON(cmd, d)
	}
	printDeploymentSummary(cmd, d)
	if !d.Succeeded() {
		return errors.New("deployment did not succeed")
	}
	return nil
}

func printDeploymentSummary(cmd *cobra.Command, d *domain.Deployment) {
	cmd.Println()
	if d.Succeeded() {
		cmd.Printf("Deployment of %s succeeded.\n", d.AppName)
	} else {
		cmd.Printf("Deployment of %s failed.\n", d.AppName)
		for _, msg := range d.Errors {
			cmd.Printf("  error: %s\n", msg)
		}
	}
	if d.URLs.Repository != "" {
		cmd.Printf("  Repository: %s\n", d.URLs.Repository)
	}
	if d.URLs.LiveSite != "" {
		cmd.Printf("  Live site:  %s\n", d.URLs.LiveSite)
	}
	if d.URLs.Domain != "" {
		cmd.Printf("  Domain:     %s\n", d.URLs.Domain)
	}
	cmd.Printf("  Record:     %s\n", d.ID)
}

func stepGlyph(status domain.StepStatus) string {
	switch status {
	case domain.StepOK:
		return "+"
	case domain.StepFailed:
		return "x"
	case domain.StepSkipped:
		return "-"
	default:
		return "*"
	}
}

// stepLabel renders a step name for humans: "create_repository" ->
// "create repository".
func stepLabel(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
