package domain

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies a hosting platform.
type Platform string

// Supported hosting platforms.
const (
	PlatformRender  Platform = "render"
	PlatformRailway Platform = "railway"
	PlatformVercel  Platform = "vercel"
)

// ParsePlatform validates a platform name.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(s)) {
	case PlatformRender:
		return PlatformRender, nil
	case PlatformRailway:
		return PlatformRailway, nil
	case PlatformVercel:
		return PlatformVercel, nil
	default:
		return "", fmt.Errorf("unknown platform %q: %w", s, ErrInvalidInput)
	}
}

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

// Step statuses.
const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Pipeline step names, in execution order.
const (
	StepValidateFiles    = "validate_files"
	StepCreateRepository = "create_repository"
	StepPrepareEnv       = "prepare_environment"
	StepDeploy           = "deploy"
	StepSetupMonitoring  = "setup_monitoring"
	StepConfigureDomain  = "configure_domain"
	StepSetupEmail       = "setup_email"
	StepVerify           = "verify_deployment"
)

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	// Name is the step identifier (see Step* constants).
	Name string `json:"name"`

	// Status is the step outcome.
	Status StepStatus `json:"status"`

	// Detail is a human-readable summary of what happened.
	Detail string `json:"detail,omitempty"`

	// Err is the error message when Status is StepFailed.
	Err string `json:"error,omitempty"`

	// Duration is how long the step took.
	Duration time.Duration `json:"duration,omitempty"`
}

// Succeeded returns true unless the step failed.
// Skipped steps count as successful, matching the pipeline's
// behaviour of continuing past unconfigured optional stages.
func (s StepResult) Succeeded() bool {
	return s.Status != StepFailed
}

// DeploymentURLs collects the addresses produced during a deployment.
type DeploymentURLs struct {
	// Repository is the source repository page (html_url).
	Repository string `json:"repository,omitempty"`

	// LiveSite is the platform-assigned application URL.
	LiveSite string `json:"live_site,omitempty"`

	// Domain is the custom domain, when one was configured.
	Domain string `json:"domain,omitempty"`
}

// Deployment is the record of one pipeline run.
type Deployment struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// AppName is the application being deployed.
	AppName string `json:"app_name"`

	// Platform is the hosting platform used.
	Platform Platform `json:"platform"`

	// ServiceID is the platform-side service identifier, once created.
	ServiceID string `json:"service_id,omitempty"`

	// RepoFullName is the owner/name of the created repository.
	RepoFullName string `json:"repo_full_name,omitempty"`

	// Steps are the pipeline step results in execution order.
	Steps []StepResult `json:"steps"`

	// URLs are the addresses produced by the run.
	URLs DeploymentURLs `json:"urls"`

	// Errors collects pipeline-level error messages.
	Errors []string `json:"errors,omitempty"`

	// CreatedAt is when the run started.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the run finished (success or failure).
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// AddStep appends a step result and returns it for convenience.
func (d *Deployment) AddStep(result StepResult) StepResult {
	d.Steps = append(d.Steps, result)
	return result
}

// Step returns the result for a named step, or nil if it has not run.
func (d *Deployment) Step(name string) *StepResult {
	for i := range d.Steps {
		if d.Steps[i].Name == name {
			return &d.Steps[i]
		}
	}
	return nil
}

// Succeeded reports whether the deployment as a whole succeeded:
// the platform deploy and the post-deploy verification both passed.
// Other stages (monitoring, domain, email) are best-effort.
func (d *Deployment) Succeeded() bool {
	deploy := d.Step(StepDeploy)
	verify := d.Step(StepVerify)
	if deploy == nil || deploy.Status != StepOK {
		return false
	}
	// A run executed with verification disabled counts the deploy alone.
	if verify == nil || verify.Status == StepSkipped {
		return true
	}
	return verify.Status == StepOK
}

// SanitizeName converts an application name into a slug usable as a
// service name, subdomain, or default domain label.
func SanitizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

// DefaultDomain derives the default custom domain for an application.
func DefaultDomain(appName string) string {
	return SanitizeName(appName) + ".com"
}

// EnvVar is a single environment variable to inject into a deployment.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SecretEnvKeys are environment variable names whose values must never
// be written into generated config files in plaintext.
var SecretEnvKeys = map[string]bool{
	"OPENAI_API_KEY":    true,
	"STRIPE_SECRET_KEY": true,
	"SESSION_SECRET":    true,
	"SENDGRID_API_KEY":  true,
	"MAILGUN_API_KEY":   true,
	"SENTRY_DSN":        true,
}
