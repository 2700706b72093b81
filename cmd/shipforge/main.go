// Command shipforge deploys generated SaaS applications end to end.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/announce"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/config/file"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/mail/mailgun"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/mail/sendgrid"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/monitor/pagerduty"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/monitor/uptime"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/platform/railway"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/platform/render"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/platform/vercel"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/registrar/cloudflare"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/registrar/godaddy"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/storage/memory"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/storage/sqlite"
	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driving/cli"
	"github.com/shipforge-labs/shipforge-cli/internal/connectors/github"
	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/core/services"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServices(wire(context.Background()))

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wire builds the service graph from whatever credentials are
// configured. Missing credentials disable the corresponding adapter;
// the pipeline skips those stages at run time.
func wire(ctx context.Context) cli.Services {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config store unavailable: %v", err)
	}
	credStore, err := file.NewCredentialsStore("")
	if err != nil {
		logger.Warn("credentials store unavailable: %v", err)
	}

	var credService *services.CredentialsService
	if credStore != nil {
		credService = services.NewCredentialsService(credStore)
	} else {
		credService = services.NewCredentialsService(nil)
	}

	creds, err := credService.ResolveAll(ctx)
	if err != nil {
		logger.Warn("resolving credentials: %v", err)
		creds = domain.Credentials{}
	}

	// Repository host.
	var repoHost driven.RepositoryHost
	var ghClient *github.Client
	if creds.Has(domain.CredGitHubToken) {
		ghClient = github.NewClient(ctx, creds.Get(domain.CredGitHubToken))
		repoHost = ghClient
	}

	// Platform deployers.
	deployers := make(map[domain.Platform]driven.PlatformDeployer)
	if creds.Has(domain.CredRenderAPIKey) {
		deployers[domain.PlatformRender] = render.New(creds.Get(domain.CredRenderAPIKey))
	}
	if creds.Has(domain.CredRailwayToken) {
		deployers[domain.PlatformRailway] = railway.New(creds.Get(domain.CredRailwayToken))
	}
	if creds.Has(domain.CredVercelToken) {
		deployers[domain.PlatformVercel] = vercel.New(creds.Get(domain.CredVercelToken))
	}

	// Domain registrars, tried in order.
	var registrars []driven.Registrar
	if creds.Has(domain.CredCloudflareToken) {
		registrars = append(registrars, cloudflare.New(creds.Get(domain.CredCloudflareToken)))
	}
	if creds.HasAll(domain.CredGoDaddyKey, domain.CredGoDaddySecret) {
		registrars = append(registrars, godaddy.New(creds.Get(domain.CredGoDaddyKey), creds.Get(domain.CredGoDaddySecret)))
	}
	var domainService *services.DomainService
	if len(registrars) > 0 {
		domainService = services.NewDomainService(registrars...)
	}

	// Transactional email providers.
	var mailers []driven.Mailer
	if creds.Has(domain.CredSendGridKey) {
		mailers = append(mailers, sendgrid.New(creds.Get(domain.CredSendGridKey)))
	}
	if creds.HasAll(domain.CredMailgunKey, domain.CredMailgunDomain) {
		mailers = append(mailers, mailgun.New(creds.Get(domain.CredMailgunKey), creds.Get(domain.CredMailgunDomain)))
	}
	var emailService *services.EmailService
	if len(mailers) > 0 {
		emailService = services.NewEmailService(mailers...)
	}

	// Monitoring.
	var monitors []driven.Monitor
	var incidents driven.IncidentManager
	if creds.Has(domain.CredPagerDutyKey) {
		fromEmail := "ops@shipforge.dev"
		if configStore != nil {
			if v := configStore.GetString("pagerduty.from_email"); v != "" {
				fromEmail = v
			}
		}
		pd := pagerduty.New(creds.Get(domain.CredPagerDutyKey), fromEmail)
		monitors = append(monitors, pd)
		incidents = pd
	}
	prober := uptime.New()
	monitors = append(monitors, prober)

	// Deployment history.
	var store driven.DeploymentStore
	sqlStore, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("deployment history unavailable, using in-memory store: %v", err)
		store = memory.NewDeploymentStore()
	} else {
		store = sqlStore
	}

	var validator *services.ValidationService
	if configStore != nil {
		validator = services.NewValidationService(configStore)
	} else {
		validator = services.NewValidationService(nil)
	}

	var cicd *services.CICDService
	if repoHost != nil {
		cicd = services.NewCICDService(repoHost)
	}

	verifyService := services.NewVerifyService(prober)

	deployService := services.NewDeployService(
		validator,
		services.NewScaffoldService(),
		cicd,
		domainService,
		emailService,
		verifyService,
		repoHost,
		github.CollectFiles,
		deployers,
		monitors,
		store,
		creds,
	)

	svcs := cli.Services{
		Deployer:    deployService,
		Verifier:    verifyService,
		Scaffolder:  services.NewScaffoldService(),
		Email:       emailService,
		Incidents:   incidents,
		Credentials: credService,
		History:     store,
	}
	if ghClient != nil {
		svcs.Watcher = services.NewWatchService(ghClient, github.Uploadable, 0)
	}
	if creds.Has(domain.CredOpenAIKey) {
		announcer, err := announce.New(creds.Get(domain.CredOpenAIKey))
		if err != nil {
			logger.Warn("announcer unavailable: %v", err)
		} else {
			svcs.Announcer = announcer
		}
	}
	return svcs
}
