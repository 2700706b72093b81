package services

import (
	"context"
	"fmt"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// DomainResult is the outcome of a custom domain setup attempt.
type DomainResult struct {
	// Domain is the domain that was configured, or attempted.
	Domain string

	// Registrar is the provider that completed the setup.
	Registrar string

	// Setup holds the created records when a registrar succeeded.
	Setup *driven.DomainSetup

	// Attempts maps each tried registrar to its failure message.
	Attempts map[string]string

	// FallbackURL is the platform URL to keep using when no registrar
	// could configure the domain.
	FallbackURL string
}

// DomainService configures custom domains, trying each registrar in
// order until one succeeds.
type DomainService struct {
	registrars []driven.Registrar
}

// NewDomainService creates a domain service. Registrars are tried in
// the order given.
func NewDomainService(registrars ...driven.Registrar) *DomainService {
	return &DomainService{registrars: registrars}
}

// SetupDomain derives the default domain for the application and points
// it at the deployment target. When every registrar fails the result
// carries the per-registrar errors and the target as fallback, and the
// returned error wraps domain.ErrNoRegistrar.
func (s *DomainService) SetupDomain(ctx context.Context, appName, target string) (*DomainResult, error) {
	name := domain.DefaultDomain(appName)
	result := &DomainResult{
		Domain:      name,
		Attempts:    make(map[string]string),
		FallbackURL: target,
	}

	if len(s.registrars) == 0 {
		return result, fmt.Errorf("no registrars configured: %w", domain.ErrNoRegistrar)
	}

	for _, r := range s.registrars {
		logger.Debug("domains: trying %s for %s", r.Name(), name)
		setup, err := r.SetupDomain(ctx, name, target)
		if err != nil {
			logger.Warn("domains: %s failed: %v", r.Name(), err)
			result.Attempts[r.Name()] = err.Error()
			continue
		}
		result.Registrar = r.Name()
		result.Setup = setup
		return result, nil
	}

	return result, fmt.Errorf("domain %s: %w", name, domain.ErrNoRegistrar)
}

// CheckAvailability asks each registrar until one answers.
func (s *DomainService) CheckAvailability(ctx context.Context, name string) (bool, error) {
	var lastErr error
	for _, r := range s.registrars {
		available, err := r.CheckAvailability(ctx, name)
		if err != nil {
			lastErr = err
			continue
		}
		return available, nil
	}
	if lastErr != nil {
		return false, fmt.Errorf("checking %s: %w", name, lastErr)
	}
	return false, fmt.Errorf("no registrars configured: %w", domain.ErrNoRegistrar)
}
