package services

import (
	"context"
	"fmt"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// EmailResult aggregates transactional email setup across providers.
type EmailResult struct {
	// Setups holds the per-provider outcomes, in provider order.
	Setups []driven.SenderSetup

	// Failures maps providers that errored to their messages.
	Failures map[string]string

	// Recommended is the provider the application should use, chosen
	// by provider order among those that set up successfully.
	Recommended string
}

// EmailService configures transactional email. Providers are tried in
// the order given; the first that succeeds becomes the recommendation.
type EmailService struct {
	mailers []driven.Mailer
}

// NewEmailService creates an email service.
func NewEmailService(mailers ...driven.Mailer) *EmailService {
	return &EmailService{mailers: mailers}
}

// SetupAll verifies each provider's key and registers the sender
// identity. Provider failures are collected, not fatal; the error is
// non-nil only when no provider could be set up.
func (s *EmailService) SetupAll(ctx context.Context, appName string) (*EmailResult, error) {
	result := &EmailResult{Failures: make(map[string]string)}
	fromEmail := fmt.Sprintf("noreply@%s", domain.DefaultDomain(appName))

	for _, m := range s.mailers {
		if err := m.VerifyKey(ctx); err != nil {
			logger.Warn("email: %s key check failed: %v", m.Name(), err)
			result.Failures[m.Name()] = err.Error()
			continue
		}

		setup, err := m.SetupSender(ctx, appName, fromEmail)
		if err != nil {
			logger.Warn("email: %s sender setup failed: %v", m.Name(), err)
			result.Failures[m.Name()] = err.Error()
			continue
		}

		result.Setups = append(result.Setups, *setup)
		if result.Recommended == "" {
			result.Recommended = m.Name()
		}
	}

	if len(s.mailers) > 0 && len(result.Setups) == 0 {
		return result, fmt.Errorf("no email provider available: %w", domain.ErrCredentialsMissing)
	}
	return result, nil
}

// Send delivers a message through the named provider, or the first
// configured provider when name is empty.
func (s *EmailService) Send(ctx context.Context, providerName string, msg driven.Message) error {
	for _, m := range s.mailers {
		if providerName != "" && m.Name() != providerName {
			continue
		}
		return m.Send(ctx, msg)
	}
	return fmt.Errorf("email provider %q: %w", providerName, domain.ErrNotFound)
}
