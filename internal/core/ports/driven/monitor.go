package driven

import (
	"context"
	"time"
)

// MonitorSetup is the outcome of configuring one monitoring provider.
type MonitorSetup struct {
	// Service identifies the provider ("pagerduty", "uptime").
	Service string

	// ServiceID is the provider-side identifier, when one was created.
	ServiceID string

	// Detail is a human-readable summary.
	Detail string
}

// Incident is a triggered alert on a monitoring provider.
type Incident struct {
	ID      string
	Title   string
	Status  string
	Urgency string
}

// Monitor configures monitoring for a deployed application.
type Monitor interface {
	// Name identifies the provider.
	Name() string

	// Setup configures monitoring for the application at the given URL.
	Setup(ctx context.Context, appName, deploymentURL string) (*MonitorSetup, error)
}

// IncidentManager raises and resolves incidents. Implemented by the
// PagerDuty adapter; the uptime prober does not manage incidents.
type IncidentManager interface {
	CreateIncident(ctx context.Context, serviceID, title, urgency string) (*Incident, error)
	ListIncidents(ctx context.Context, status string) ([]Incident, error)
	ResolveIncident(ctx context.Context, incidentID string) (*Incident, error)
}

// ProbeResult is one uptime probe observation.
type ProbeResult struct {
	// Up reports whether the target answered with a 2xx status.
	Up bool

	// StatusCode is the observed HTTP status.
	StatusCode int

	// Latency is the request round-trip time.
	Latency time.Duration
}

// Prober performs HTTP liveness probes against a deployment.
type Prober interface {
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}
