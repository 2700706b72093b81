package driven

import (
	"context"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

// DeploymentStore persists deployment records.
type DeploymentStore interface {
	// Save stores or updates a deployment record.
	Save(ctx context.Context, d domain.Deployment) error

	// Get retrieves a deployment by ID.
	Get(ctx context.Context, id string) (*domain.Deployment, error)

	// List returns all deployments, most recent first.
	List(ctx context.Context) ([]domain.Deployment, error)

	// Delete removes a deployment record.
	Delete(ctx context.Context, id string) error
}
