// Package pagerduty wires deployments into PagerDuty through its REST v2
// API. Setup provisions a PagerDuty service for the application; incidents
// are raised and resolved against that service.
//
// PagerDuty requires a From header carrying a valid user email on incident
// writes, so the client is constructed with both an API token and the
// account email.
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

const defaultBaseURL = "https://api.pagerduty.com"

// Client talks to the PagerDuty REST v2 API.
type Client struct {
	token      string
	fromEmail  string
	baseURL    string
	httpClient *http.Client
}

var (
	_ driven.Monitor         = (*Client)(nil)
	_ driven.IncidentManager = (*Client)(nil)
)

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a PagerDuty client. fromEmail must belong to a user on the
// account; it is sent on incident writes.
func New(token, fromEmail string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		fromEmail:  fromEmail,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider.
func (c *Client) Name() string { return "pagerduty" }

type pdService struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

type serviceEnvelope struct {
	Service pdService `json:"service"`
}

type serviceListEnvelope struct {
	Services []pdService `json:"services"`
}

// Setup creates a PagerDuty service named after the application, reusing an
// existing service with the same name if one is already there.
func (c *Client) Setup(ctx context.Context, appName, deploymentURL string) (*driven.MonitorSetup, error) {
	if existing, err := c.findService(ctx, appName); err == nil && existing != nil {
		logger.Debug("pagerduty: reusing service %s for %s", existing.ID, appName)
		return &driven.MonitorSetup{
			Service:   c.Name(),
			ServiceID: existing.ID,
			Detail:    fmt.Sprintf("existing service %s", existing.ID),
		}, nil
	}

	req := serviceEnvelope{Service: pdService{
		Type:        "service",
		Name:        appName,
		Description: fmt.Sprintf("Deployment monitoring for %s (%s)", appName, deploymentURL),
	}}

	var resp serviceEnvelope
	if err := c.do(ctx, http.MethodPost, "/services", req, http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("creating service for %s: %w", appName, err)
	}

	return &driven.MonitorSetup{
		Service:   c.Name(),
		ServiceID: resp.Service.ID,
		Detail:    fmt.Sprintf("service %s created", resp.Service.ID),
	}, nil
}

func (c *Client) findService(ctx context.Context, name string) (*pdService, error) {
	path := "/services?query=" + url.QueryEscape(name)
	var resp serviceListEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Services {
		if resp.Services[i].Name == name {
			return &resp.Services[i], nil
		}
	}
	return nil, nil
}

type pdIncident struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Status  string `json:"status,omitempty"`
	Urgency string `json:"urgency,omitempty"`

	Service *pdReference `json:"service,omitempty"`
}

type pdReference struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type incidentEnvelope struct {
	Incident pdIncident `json:"incident"`
}

type incidentListEnvelope struct {
	Incidents []pdIncident `json:"incidents"`
}

// CreateIncident raises an incident on the given service.
func (c *Client) CreateIncident(ctx context.Context, serviceID, title, urgency string) (*driven.Incident, error) {
	if urgency == "" {
		urgency = "high"
	}
	req := incidentEnvelope{Incident: pdIncident{
		Type:    "incident",
		Title:   title,
		Urgency: urgency,
		Service: &pdReference{ID: serviceID, Type: "service_reference"},
	}}

	var resp incidentEnvelope
	if err := c.do(ctx, http.MethodPost, "/incidents", req, http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("creating incident: %w", err)
	}
	return toIncident(resp.Incident), nil
}

// ListIncidents returns incidents, optionally filtered by status
// ("triggered", "acknowledged", "resolved").
func (c *Client) ListIncidents(ctx context.Context, status string) ([]driven.Incident, error) {
	path := "/incidents"
	if status != "" {
		path += "?statuses[]=" + url.QueryEscape(status)
	}

	var resp incidentListEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("listing incidents: %w", err)
	}

	out := make([]driven.Incident, 0, len(resp.Incidents))
	for _, in := range resp.Incidents {
		out = append(out, *toIncident(in))
	}
	return out, nil
}

// ResolveIncident marks an incident resolved.
func (c *Client) ResolveIncident(ctx context.Context, incidentID string) (*driven.Incident, error) {
	req := incidentEnvelope{Incident: pdIncident{
		Type:   "incident_reference",
		Status: "resolved",
	}}

	var resp incidentEnvelope
	path := "/incidents/" + url.PathEscape(incidentID)
	if err := c.do(ctx, http.MethodPut, path, req, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("resolving incident %s: %w", incidentID, err)
	}
	return toIncident(resp.Incident), nil
}

func toIncident(in pdIncident) *driven.Incident {
	return &driven.Incident{
		ID:      in.ID,
		Title:   in.Title,
		Status:  in.Status,
		Urgency: in.Urgency,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("Accept", "application/vnd.pagerduty+json;version=2")
	req.Header.Set("From", c.fromEmail)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling pagerduty: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pagerduty %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
