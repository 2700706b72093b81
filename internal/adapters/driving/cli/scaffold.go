package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

var (
	scaffoldName     string
	scaffoldPlatform string
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold [path]",
	Short: "Generate platform config files for a project",
	Long: `Writes the deployment configuration file set (render.yaml,
railway.toml, vercel.json, app.json, Procfile, Dockerfile,
docker-compose.yml) into the project directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScaffold,
}

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldName, "name", "n", "", "application name (default: directory name)")
	scaffoldCmd.Flags().StringVarP(&scaffoldPlatform, "platform", "p", "render", "primary hosting platform")
	rootCmd.AddCommand(scaffoldCmd)
}

func runScaffold(cmd *cobra.Command, args []string) error {
	if scaffolder == nil {
		return errors.New("scaffold service not configured")
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	platform, err := domain.ParsePlatform(scaffoldPlatform)
	if err != nil {
		return err
	}
	name := scaffoldName
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", dir, err)
		}
		name = filepath.Base(abs)
	}

	written, err := scaffolder.WriteAll(dir, name, platform, nil)
	if err != nil {
		return fmt.Errorf("scaffold failed: %w", err)
	}
	for _, path := range written {
		cmd.Printf("wrote %s\n", path)
	}
	return nil
}
