package driven

import (
	"context"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

// DeploySpec is the input for a platform deployment.
type DeploySpec struct {
	// Name is the service/project name on the platform.
	Name string

	// RepoURL is the source repository (https URL).
	RepoURL string

	// Branch is the branch to deploy. Defaults to "main".
	Branch string

	// Env are the environment variables to inject.
	Env []domain.EnvVar
}

// DeployResult is the outcome of a successful platform deployment request.
type DeployResult struct {
	// ServiceID is the platform-side service identifier.
	ServiceID string

	// ProjectID is the platform-side project identifier, when the
	// platform distinguishes projects from services.
	ProjectID string

	// URL is the assigned application address.
	URL string

	// Status is the initial deployment status (typically "deploying").
	Status string
}

// ServiceStatus is the current state of a deployed service.
type ServiceStatus struct {
	// Status is the platform-reported state.
	Status string

	// URL is the service address.
	URL string
}

// PlatformDeployer deploys an application to one hosting platform.
// Implementations wrap the Render, Railway, and Vercel APIs.
type PlatformDeployer interface {
	// Platform identifies the platform this deployer targets.
	Platform() domain.Platform

	// Deploy creates the service (and project, where applicable),
	// injects environment variables, and triggers the first deploy.
	Deploy(ctx context.Context, spec DeploySpec) (*DeployResult, error)

	// Status returns the current state of a service.
	Status(ctx context.Context, serviceID string) (*ServiceStatus, error)
}
