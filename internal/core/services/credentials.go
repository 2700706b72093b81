package services

import (
	"context"
	"fmt"
	"os"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

// CredentialsService resolves provider credentials, preferring the
// persistent store and falling back to the process environment. This
// lets a user configure tokens once with `shipforge credentials set`
// while still honouring CI-style environment injection.
type CredentialsService struct {
	store driven.CredentialsStore
}

// NewCredentialsService creates a credentials service. The store may be
// nil, in which case only the environment is consulted.
func NewCredentialsService(store driven.CredentialsStore) *CredentialsService {
	return &CredentialsService{store: store}
}

// Resolve returns the value for a credential key, or "" when neither
// the store nor the environment holds it.
func (s *CredentialsService) Resolve(ctx context.Context, key string) (string, error) {
	if s.store != nil {
		val, err := s.store.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("reading credential %s: %w", key, err)
		}
		if val != "" {
			return val, nil
		}
	}
	return os.Getenv(key), nil
}

// ResolveAll returns every known credential key with its resolved value.
// Keys with no value anywhere are omitted.
func (s *CredentialsService) ResolveAll(ctx context.Context) (domain.Credentials, error) {
	creds := make(domain.Credentials)
	for _, key := range domain.KnownCredentialKeys {
		val, err := s.Resolve(ctx, key)
		if err != nil {
			return nil, err
		}
		if val != "" {
			creds[key] = val
		}
	}
	return creds, nil
}

// Set persists a credential in the store.
func (s *CredentialsService) Set(ctx context.Context, key, value string) error {
	if s.store == nil {
		return fmt.Errorf("no credential store configured: %w", domain.ErrNotImplemented)
	}
	if !isKnownCredential(key) {
		return fmt.Errorf("unknown credential key %q: %w", key, domain.ErrInvalidInput)
	}
	return s.store.Set(ctx, key, value)
}

// Delete removes a credential from the store. The environment fallback
// is unaffected.
func (s *CredentialsService) Delete(ctx context.Context, key string) error {
	if s.store == nil {
		return fmt.Errorf("no credential store configured: %w", domain.ErrNotImplemented)
	}
	return s.store.Delete(ctx, key)
}

func isKnownCredential(key string) bool {
	for _, k := range domain.KnownCredentialKeys {
		if k == key {
			return true
		}
	}
	return false
}
