package driven

import "context"

// DNSRecord is one DNS record created during domain setup.
type DNSRecord struct {
	Type    string
	Name    string
	Content string
	Proxied bool
}

// DomainSetup is the outcome of configuring a custom domain.
type DomainSetup struct {
	// Domain is the configured domain name.
	Domain string

	// Records are the DNS records that were created.
	Records []DNSRecord

	// SSLStatus is the certificate provisioning state ("pending", "active").
	SSLStatus string
}

// Registrar configures custom domains with one DNS/registrar provider.
type Registrar interface {
	// Name identifies the registrar (e.g. "cloudflare").
	Name() string

	// CheckAvailability reports whether the domain can be registered
	// or is already under management.
	CheckAvailability(ctx context.Context, domain string) (bool, error)

	// SetupDomain points the domain at the deployment target and
	// returns the records created.
	SetupDomain(ctx context.Context, domain, target string) (*DomainSetup, error)
}
