package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// Ensure DeployService implements the interface.
var _ driving.DeployOrchestrator = (*DeployService)(nil)

// FileCollector gathers a project's uploadable files as path->content.
type FileCollector func(path string) (map[string]string, error)

// DeployService runs the autonomous deployment pipeline: validate the
// project, create and populate a source repository, prepare environment
// variables, deploy to the chosen platform, then configure monitoring,
// a custom domain, and transactional email, and finally verify the
// live deployment.
//
// The platform deploy and the verification decide overall success;
// monitoring, domain, and email are best-effort and skip cleanly when
// their credentials are absent.
type DeployService struct {
	validator *ValidationService
	scaffold  *ScaffoldService
	cicd      *CICDService
	domains   *DomainService
	email     *EmailService
	verifier  driving.Verifier

	repoHost  driven.RepositoryHost
	collector FileCollector
	deployers map[domain.Platform]driven.PlatformDeployer
	monitors  []driven.Monitor
	store     driven.DeploymentStore
	creds     domain.Credentials

	now   func() time.Time
	newID func() string
}

// NewDeployService creates the pipeline orchestrator. repoHost may be
// nil when no GitHub token is configured; the pipeline then fails at
// the deploy stage since every platform deploys from a repository.
func NewDeployService(
	validator *ValidationService,
	scaffold *ScaffoldService,
	cicd *CICDService,
	domains *DomainService,
	email *EmailService,
	verifier driving.Verifier,
	repoHost driven.RepositoryHost,
	collector FileCollector,
	deployers map[domain.Platform]driven.PlatformDeployer,
	monitors []driven.Monitor,
	store driven.DeploymentStore,
	creds domain.Credentials,
) *DeployService {
	return &DeployService{
		validator: validator,
		scaffold:  scaffold,
		cicd:      cicd,
		domains:   domains,
		email:     email,
		verifier:  verifier,
		repoHost:  repoHost,
		collector: collector,
		deployers: deployers,
		monitors:  monitors,
		store:     store,
		creds:     creds,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Platforms lists the platforms with configured credentials, sorted.
func (s *DeployService) Platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(s.deployers))
	for p := range s.deployers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Status returns the platform-side state of a deployed service.
func (s *DeployService) Status(ctx context.Context, platform domain.Platform, serviceID string) (string, error) {
	deployer, ok := s.deployers[platform]
	if !ok {
		return "", s.platformUnavailable(platform)
	}
	status, err := deployer.Status(ctx, serviceID)
	if err != nil {
		return "", fmt.Errorf("status of %s on %s: %w", serviceID, platform, err)
	}
	return status.Status, nil
}

// Deploy runs the full pipeline. The deployment record is returned
// even when the pipeline aborts early; callers check Succeeded().
func (s *DeployService) Deploy(ctx context.Context, req driving.DeployRequest) (*domain.Deployment, error) {
	appName := req.AppName
	if appName == "" {
		appName = filepath.Base(req.Path)
	}

	d := &domain.Deployment{
		ID:        s.newID(),
		AppName:   appName,
		Platform:  req.Platform,
		CreatedAt: s.now(),
	}
	defer s.finish(ctx, d)

	// Stage 1: validate the local project tree.
	if ok := s.runValidate(d, req); !ok {
		return d, nil
	}

	// Unknown platforms abort before any remote state is created.
	deployer, ok := s.deployers[req.Platform]
	if !ok {
		err := s.platformUnavailable(req.Platform)
		d.Errors = append(d.Errors, err.Error())
		return d, err
	}

	// Stage 2: prepare environment variables (needed by the repo stage
	// for secrets and config generation).
	env := s.prepareEnv(d, req)

	// Stage 3: create and populate the source repository.
	repo := s.runCreateRepository(ctx, d, req, env)

	// Stage 4: platform deploy. Aborts the pipeline on failure.
	if ok := s.runDeploy(ctx, d, req, deployer, repo, env); !ok {
		return d, nil
	}

	// Stages 5-7 are best-effort.
	s.runMonitoring(ctx, d, req)
	s.runDomain(ctx, d, req, appName)
	s.runEmail(ctx, d, req, appName)

	// Stage 8: verification decides overall success with the deploy.
	s.runVerify(ctx, d, req)

	return d, nil
}

func (s *DeployService) finish(ctx context.Context, d *domain.Deployment) {
	d.CompletedAt = s.now()
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, *d); err != nil {
		logger.Warn("deploy: saving deployment record: %v", err)
	}
}

func (s *DeployService) platformUnavailable(platform domain.Platform) error {
	available := make([]string, 0, len(s.deployers))
	for _, p := range s.Platforms() {
		available = append(available, string(p))
	}
	return fmt.Errorf("platform %q not configured (available: %s): %w",
		platform, strings.Join(available, ", "), domain.ErrPlatformUnavailable)
}

// emit records a step on the deployment and forwards it to the
// progress callback.
func (s *DeployService) emit(d *domain.Deployment, req driving.DeployRequest, result domain.StepResult) {
	d.AddStep(result)
	if req.Progress != nil {
		req.Progress(result)
	}
	logger.Debug("deploy: step %s -> %s (%s)", result.Name, result.Status, result.Detail)
}

func (s *DeployService) runValidate(d *domain.Deployment, req driving.DeployRequest) bool {
	start := s.now()
	result, err := s.validator.ValidateFiles(req.Path)
	if err != nil {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepValidateFiles,
			Status:   domain.StepFailed,
			Err:      err.Error(),
			Duration: s.now().Sub(start),
		})
		d.Errors = append(d.Errors, "MVP file validation failed")
		return false
	}
	if !result.Success() {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepValidateFiles,
			Status:   domain.StepFailed,
			Detail:   fmt.Sprintf("missing: %s", strings.Join(result.Missing, ", ")),
			Err:      domain.ErrValidationFailed.Error(),
			Duration: s.now().Sub(start),
		})
		d.Errors = append(d.Errors, "MVP file validation failed")
		return false
	}
	s.emit(d, req, domain.StepResult{
		Name:     domain.StepValidateFiles,
		Status:   domain.StepOK,
		Detail:   fmt.Sprintf("%d/%d required files present", len(result.Present), result.TotalRequired),
		Duration: s.now().Sub(start),
	})
	return true
}

// prepareEnv assembles the environment injected into the deployment.
// The session secret is generated when not configured so the deployed
// app always has one.
func (s *DeployService) prepareEnv(d *domain.Deployment, req driving.DeployRequest) []domain.EnvVar {
	start := s.now()
	var env []domain.EnvVar

	for _, key := range []string{domain.CredOpenAIKey, domain.CredStripeSecretKey, domain.CredSentryDSN} {
		if s.creds.Has(key) {
			env = append(env, domain.EnvVar{Key: key, Value: s.creds.Get(key)})
		}
	}

	secret := s.creds.Get(domain.CredSessionSecret)
	if secret == "" {
		secret = randomHex(32)
	}
	env = append(env,
		domain.EnvVar{Key: domain.CredSessionSecret, Value: secret},
		domain.EnvVar{Key: "FLASK_ENV", Value: "production"},
		domain.EnvVar{Key: "PYTHONPATH", Value: "."},
	)

	s.emit(d, req, domain.StepResult{
		Name:     domain.StepPrepareEnv,
		Status:   domain.StepOK,
		Detail:   fmt.Sprintf("%d environment variables prepared", len(env)),
		Duration: s.now().Sub(start),
	})
	return env
}

// runCreateRepository creates the repository, uploads the project tree
// plus generated platform configs, stores Actions secrets, and installs
// the deploy workflow. Returns nil when the stage failed or no
// repository host is configured.
func (s *DeployService) runCreateRepository(ctx context.Context, d *domain.Deployment, req driving.DeployRequest, env []domain.EnvVar) *driven.Repository {
	if s.repoHost == nil {
		s.emit(d, req, domain.StepResult{
			Name:   domain.StepCreateRepository,
			Status: domain.StepSkipped,
			Detail: "no repository host configured",
		})
		return nil
	}

	start := s.now()
	fail := func(err error) *driven.Repository {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepCreateRepository,
			Status:   domain.StepFailed,
			Err:      err.Error(),
			Duration: s.now().Sub(start),
		})
		d.Errors = append(d.Errors, fmt.Sprintf("repository setup failed: %v", err))
		return nil
	}

	description := fmt.Sprintf("Autonomous SaaS deployment: %s", d.AppName)
	repo, err := s.repoHost.CreateRepository(ctx, d.AppName, description, req.PrivateRepo)
	if err != nil {
		return fail(err)
	}
	d.RepoFullName = repo.FullName
	d.URLs.Repository = repo.HTMLURL

	files, err := s.collector(req.Path)
	if err != nil {
		return fail(fmt.Errorf("collecting project files: %w", err))
	}
	configs, err := s.scaffold.Generate(d.AppName, req.Platform, env)
	if err != nil {
		return fail(fmt.Errorf("generating platform configs: %w", err))
	}
	for name, content := range configs {
		if _, exists := files[name]; !exists {
			files[name] = content
		}
	}

	report, err := s.repoHost.UploadFiles(ctx, repo.FullName, files, "Initial deployment")
	if err != nil {
		return fail(fmt.Errorf("uploading files: %w", err))
	}
	if !report.Success() {
		return fail(fmt.Errorf("%d of %d files failed to upload", len(report.Failed), len(files)))
	}

	// Secrets and the workflow are best-effort: the platform deploy
	// does not depend on them.
	for _, v := range env {
		if !domain.SecretEnvKeys[v.Key] && v.Key != domain.CredSessionSecret {
			continue
		}
		if err := s.repoHost.CreateSecret(ctx, repo.FullName, v.Key, v.Value); err != nil {
			logger.Warn("deploy: storing secret %s: %v", v.Key, err)
		}
	}
	if s.cicd != nil {
		if _, err := s.cicd.Setup(ctx, repo.FullName, req.Platform); err != nil {
			logger.Warn("deploy: workflow setup: %v", err)
		}
	}

	s.emit(d, req, domain.StepResult{
		Name:     domain.StepCreateRepository,
		Status:   domain.StepOK,
		Detail:   fmt.Sprintf("%s (%d files)", repo.FullName, len(report.Uploaded)),
		Duration: s.now().Sub(start),
	})
	return repo
}

func (s *DeployService) runDeploy(ctx context.Context, d *domain.Deployment, req driving.DeployRequest, deployer driven.PlatformDeployer, repo *driven.Repository, env []domain.EnvVar) bool {
	start := s.now()

	if repo == nil {
		s.emit(d, req, domain.StepResult{
			Name:   domain.StepDeploy,
			Status: domain.StepFailed,
			Err:    domain.ErrRepositoryRequired.Error(),
		})
		d.Errors = append(d.Errors, fmt.Sprintf("deployment to %s failed", req.Platform))
		return false
	}

	result, err := deployer.Deploy(ctx, driven.DeploySpec{
		Name:    domain.SanitizeName(d.AppName),
		RepoURL: repo.HTMLURL,
		Branch:  repo.DefaultBranch,
		Env:     env,
	})
	if err != nil {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepDeploy,
			Status:   domain.StepFailed,
			Err:      err.Error(),
			Duration: s.now().Sub(start),
		})
		d.Errors = append(d.Errors, fmt.Sprintf("deployment to %s failed", req.Platform))
		return false
	}

	d.ServiceID = result.ServiceID
	d.URLs.LiveSite = result.URL
	s.emit(d, req, domain.StepResult{
		Name:     domain.StepDeploy,
		Status:   domain.StepOK,
		Detail:   result.URL,
		Duration: s.now().Sub(start),
	})
	return true
}

func (s *DeployService) runMonitoring(ctx context.Context, d *domain.Deployment, req driving.DeployRequest) {
	start := s.now()

	var configured []string
	if s.creds.Has(domain.CredSentryDSN) {
		configured = append(configured, "Sentry error tracking")
	}
	if s.creds.Has(domain.CredGoogleAnalyticsID) {
		configured = append(configured, "Google Analytics")
	}

	for _, m := range s.monitors {
		setup, err := m.Setup(ctx, d.AppName, d.URLs.LiveSite)
		if err != nil {
			logger.Warn("deploy: monitor %s: %v", m.Name(), err)
			continue
		}
		configured = append(configured, fmt.Sprintf("%s (%s)", setup.Service, setup.Detail))
	}

	if len(configured) == 0 {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepSetupMonitoring,
			Status:   domain.StepSkipped,
			Detail:   "no monitoring services configured",
			Duration: s.now().Sub(start),
		})
		return
	}
	s.emit(d, req, domain.StepResult{
		Name:     domain.StepSetupMonitoring,
		Status:   domain.StepOK,
		Detail:   fmt.Sprintf("monitoring setup completed with %d services: %s", len(configured), strings.Join(configured, "; ")),
		Duration: s.now().Sub(start),
	})
}

func (s *DeployService) runDomain(ctx context.Context, d *domain.Deployment, req driving.DeployRequest, appName string) {
	start := s.now()

	if s.domains == nil {
		s.emit(d, req, domain.StepResult{
			Name:   domain.StepConfigureDomain,
			Status: domain.StepSkipped,
			Detail: "custom domain configuration skipped (no domain registrar API); using default URL",
		})
		return
	}

	result, err := s.domains.SetupDomain(ctx, appName, d.URLs.LiveSite)
	if err != nil {
		// Domain setup is optional; the platform URL keeps working.
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepConfigureDomain,
			Status:   domain.StepSkipped,
			Detail:   fmt.Sprintf("custom domain unavailable, using default URL (%v)", err),
			Duration: s.now().Sub(start),
		})
		return
	}

	d.URLs.Domain = result.Domain
	s.emit(d, req, domain.StepResult{
		Name:     domain.StepConfigureDomain,
		Status:   domain.StepOK,
		Detail:   fmt.Sprintf("%s via %s (ssl %s)", result.Domain, result.Registrar, result.Setup.SSLStatus),
		Duration: s.now().Sub(start),
	})
}

func (s *DeployService) runEmail(ctx context.Context, d *domain.Deployment, req driving.DeployRequest, appName string) {
	start := s.now()

	if s.email == nil {
		s.emit(d, req, domain.StepResult{
			Name:   domain.StepSetupEmail,
			Status: domain.StepSkipped,
			Detail: "email notifications skipped (no email service API keys)",
		})
		return
	}

	result, err := s.email.SetupAll(ctx, appName)
	if err != nil {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepSetupEmail,
			Status:   domain.StepSkipped,
			Detail:   fmt.Sprintf("email notifications skipped (%v)", err),
			Duration: s.now().Sub(start),
		})
		return
	}

	s.emit(d, req, domain.StepResult{
		Name:     domain.StepSetupEmail,
		Status:   domain.StepOK,
		Detail:   fmt.Sprintf("%d providers configured, recommended: %s", len(result.Setups), result.Recommended),
		Duration: s.now().Sub(start),
	})
}

func (s *DeployService) runVerify(ctx context.Context, d *domain.Deployment, req driving.DeployRequest) {
	start := s.now()

	if req.SkipVerify || s.verifier == nil {
		s.emit(d, req, domain.StepResult{
			Name:   domain.StepVerify,
			Status: domain.StepSkipped,
			Detail: "verification disabled",
		})
		return
	}

	report, err := s.verifier.Verify(ctx, d.URLs.LiveSite)
	if err != nil {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepVerify,
			Status:   domain.StepFailed,
			Err:      err.Error(),
			Duration: s.now().Sub(start),
		})
		d.Errors = append(d.Errors, fmt.Sprintf("verification failed: %v", err))
		return
	}

	detail := fmt.Sprintf("%d/%d checks passed (%.1f%%)",
		report.PassedChecks(), report.TotalChecks(), report.PassRate())
	if !report.Success() {
		s.emit(d, req, domain.StepResult{
			Name:     domain.StepVerify,
			Status:   domain.StepFailed,
			Detail:   detail,
			Err:      domain.ErrVerificationFailed.Error(),
			Duration: s.now().Sub(start),
		})
		d.Errors = append(d.Errors, "deployment verification failed")
		return
	}
	if report.DeploymentReady() {
		detail += ", production ready"
	}
	s.emit(d, req, domain.StepResult{
		Name:     domain.StepVerify,
		Status:   domain.StepOK,
		Detail:   detail,
		Duration: s.now().Sub(start),
	})
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
