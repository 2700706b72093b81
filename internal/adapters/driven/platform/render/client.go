// Package render implements the PlatformDeployer port for Render.
//
// Render creates a web service from a connected repository in a single
// call; environment variables ride along in the creation payload.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// DefaultBaseURL is the Render REST API root.
const DefaultBaseURL = "https://api.render.com/v1"

// Build settings for the generated Flask MVP layout.
const (
	buildCommand = "pip install -r requirements.txt"
	startCommand = "gunicorn main:app --bind 0.0.0.0:$PORT"
)

// Ensure Client implements the port.
var _ driven.PlatformDeployer = (*Client)(nil)

// Client is a Render REST API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Render client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform identifies this deployer.
func (c *Client) Platform() domain.Platform {
	return domain.PlatformRender
}

type envVarPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type createServicePayload struct {
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	Repo         string          `json:"repo"`
	Branch       string          `json:"branch"`
	BuildCommand string          `json:"buildCommand"`
	StartCommand string          `json:"startCommand"`
	EnvVars      []envVarPayload `json:"envVars"`
	Plan         string          `json:"plan"`
	Region       string          `json:"region"`
}

type serviceResponse struct {
	ID             string `json:"id"`
	ServiceDetails struct {
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"serviceDetails"`
}

// Deploy creates a web service from the repository. Render starts the
// first build automatically.
func (c *Client) Deploy(ctx context.Context, spec driven.DeploySpec) (*driven.DeployResult, error) {
	branch := spec.Branch
	if branch == "" {
		branch = "main"
	}

	payload := createServicePayload{
		Type:         "web_service",
		Name:         spec.Name,
		Repo:         spec.RepoURL,
		Branch:       branch,
		BuildCommand: buildCommand,
		StartCommand: startCommand,
		Plan:         "free",
		Region:       "oregon",
	}
	for _, ev := range spec.Env {
		payload.EnvVars = append(payload.EnvVars, envVarPayload{Key: ev.Key, Value: ev.Value})
	}

	var created serviceResponse
	if err := c.do(ctx, http.MethodPost, "/services", payload, http.StatusCreated, &created); err != nil {
		return nil, fmt.Errorf("create render service: %w", err)
	}

	logger.Debug("render service %s created", created.ID)

	return &driven.DeployResult{
		ServiceID: created.ID,
		URL:       created.ServiceDetails.URL,
		Status:    "deploying",
	}, nil
}

// Status returns the deployment state of a service.
func (c *Client) Status(ctx context.Context, serviceID string) (*driven.ServiceStatus, error) {
	var svc serviceResponse
	if err := c.do(ctx, http.MethodGet, "/services/"+serviceID, nil, http.StatusOK, &svc); err != nil {
		return nil, fmt.Errorf("get render service: %w", err)
	}

	return &driven.ServiceStatus{
		Status: svc.ServiceDetails.Status,
		URL:    svc.ServiceDetails.URL,
	}, nil
}

// do issues one API request, expecting wantStatus, decoding into out.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("render API %d: %s", resp.StatusCode, string(text))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
