// Package uptime performs plain HTTP liveness probes against deployed
// applications. It backs both the post-deploy verification checks and the
// watch loop's periodic health reporting.
package uptime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

// Prober issues HTTP GET probes and records status and latency.
type Prober struct {
	httpClient *http.Client
}

var (
	_ driven.Prober  = (*Prober)(nil)
	_ driven.Monitor = (*Prober)(nil)
)

// Option customises a Prober.
type Option func(*Prober)

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) { p.httpClient.Timeout = d }
}

// New creates a Prober with a 10 second default timeout.
func New(opts ...Option) *Prober {
	p := &Prober{httpClient: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the provider.
func (p *Prober) Name() string { return "uptime" }

// Probe issues one GET against url. A transport failure returns an error; a
// non-2xx answer is a successful probe with Up false.
func (p *Prober) Probe(ctx context.Context, url string) (*driven.ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building probe request: %w", err)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", url, err)
	}
	defer resp.Body.Close()

	return &driven.ProbeResult{
		Up:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Latency:    latency,
	}, nil
}

// Setup verifies the deployment answers probes. There is nothing to
// provision on a provider side; an unreachable target is reported in the
// setup detail rather than failing the step.
func (p *Prober) Setup(ctx context.Context, appName, deploymentURL string) (*driven.MonitorSetup, error) {
	result, err := p.Probe(ctx, deploymentURL)
	if err != nil {
		return &driven.MonitorSetup{
			Service: p.Name(),
			Detail:  fmt.Sprintf("initial probe failed: %v", err),
		}, nil
	}

	detail := fmt.Sprintf("probe %d in %s", result.StatusCode, result.Latency.Round(time.Millisecond))
	if !result.Up {
		detail = "degraded, " + detail
	}
	return &driven.MonitorSetup{
		Service: p.Name(),
		Detail:  detail,
	}, nil
}
