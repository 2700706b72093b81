package driving

import (
	"context"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

// DeployRequest is the input for one pipeline run.
type DeployRequest struct {
	// Path is the local project directory.
	Path string

	// AppName is the application name. Defaults to the directory name.
	AppName string

	// Platform is the hosting platform to deploy to.
	Platform domain.Platform

	// PrivateRepo creates the source repository as private.
	PrivateRepo bool

	// SkipVerify disables the post-deploy verification stage.
	SkipVerify bool

	// Progress receives step results as they complete. May be nil.
	Progress func(domain.StepResult)
}

// DeployOrchestrator runs the autonomous deployment pipeline.
type DeployOrchestrator interface {
	// Deploy runs the full pipeline and returns the deployment record.
	// The record is returned even when the pipeline aborts early; check
	// Deployment.Succeeded.
	Deploy(ctx context.Context, req DeployRequest) (*domain.Deployment, error)

	// Status returns the platform-side state of a deployed service.
	Status(ctx context.Context, platform domain.Platform, serviceID string) (string, error)

	// Platforms lists the platforms with configured credentials.
	Platforms() []domain.Platform
}

// Verifier runs post-deploy verification against a deployed application.
type Verifier interface {
	// Verify runs the full smoke-test suite against the base URL.
	Verify(ctx context.Context, baseURL string) (*domain.VerificationReport, error)
}

// Scaffolder generates platform configuration files for a project.
type Scaffolder interface {
	// Generate produces the config file set for the application.
	Generate(appName string, platform domain.Platform, env []domain.EnvVar) (map[string]string, error)

	// WriteAll generates the file set and writes it into dir.
	WriteAll(dir, appName string, platform domain.Platform, env []domain.EnvVar) ([]string, error)
}

// Watcher mirrors local file changes to the deployment's repository.
type Watcher interface {
	// Watch blocks, uploading changed files to the repository until the
	// context is cancelled.
	Watch(ctx context.Context, path, repoFullName string) error
}

// Announcer generates launch content for a deployed application.
type Announcer interface {
	// Announce produces an announcement email and a social post for
	// the application at the given URL.
	Announce(ctx context.Context, appName, liveURL string) (*Announcement, error)
}

// Announcement is generated launch content.
type Announcement struct {
	// Subject is the email subject line.
	Subject string

	// EmailHTML is the announcement email body.
	EmailHTML string

	// SocialPost is a short post for social channels.
	SocialPost string
}
