// Package cli implements the shipforge command tree. Commands call the
// core services through the driving ports; wiring happens in main via
// SetServices so tests can substitute fakes.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/core/services"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services holds the wired application services the commands call.
type Services struct {
	Deployer    driving.DeployOrchestrator
	Verifier    driving.Verifier
	Scaffolder  driving.Scaffolder
	Watcher     driving.Watcher
	Announcer   driving.Announcer
	Email       *services.EmailService
	Incidents   driven.IncidentManager
	Credentials *services.CredentialsService
	History     driven.DeploymentStore
}

var (
	deployOrchestrator driving.DeployOrchestrator
	verifier           driving.Verifier
	scaffolder         driving.Scaffolder
	watcher            driving.Watcher
	announcer          driving.Announcer
	emailService       *services.EmailService
	incidentManager    driven.IncidentManager
	credentialsService *services.CredentialsService
	historyStore       driven.DeploymentStore
)

// SetServices wires the application services into the command tree.
func SetServices(s Services) {
	deployOrchestrator = s.Deployer
	verifier = s.Verifier
	scaffolder = s.Scaffolder
	watcher = s.Watcher
	announcer = s.Announcer
	emailService = s.Email
	incidentManager = s.Incidents
	credentialsService = s.Credentials
	historyStore = s.History
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shipforge",
	Short: "Autonomous SaaS deployment pipeline",
	Long: `Shipforge deploys a generated SaaS application end to end:
it validates the project, creates and populates a GitHub repository,
deploys to Render, Railway, or Vercel, then configures monitoring,
a custom domain, and transactional email, and verifies the live site.

Credentials come from 'shipforge credentials set' or the environment;
stages without credentials are skipped, not failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
