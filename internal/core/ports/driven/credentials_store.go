package driven

import (
	"context"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

// CredentialsStore persists provider API tokens. One flat key/value
// set per installation; the environment supplies fallbacks for keys
// the store does not hold.
type CredentialsStore interface {
	// Set stores or updates a credential value.
	Set(ctx context.Context, key, value string) error

	// Get retrieves a credential value. Returns "" and no error when
	// the key is unset.
	Get(ctx context.Context, key string) (string, error)

	// All returns every stored credential.
	All(ctx context.Context) (domain.Credentials, error)

	// Delete removes a credential.
	Delete(ctx context.Context, key string) error
}
