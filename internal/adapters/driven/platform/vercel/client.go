// Package vercel implements the PlatformDeployer port for Vercel.
//
// A Vercel deployment is three REST calls: create the project linked
// to the repository, set each environment variable, then trigger a
// production deployment.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// DefaultBaseURL is the Vercel REST API root.
const DefaultBaseURL = "https://api.vercel.com/v2"

// Ensure Client implements the port.
var _ driven.PlatformDeployer = (*Client)(nil)

// Client is a Vercel REST API client.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a Vercel client.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
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
	return domain.PlatformVercel
}

// Deploy creates the project, injects env vars, and triggers a
// production deployment.
func (c *Client) Deploy(ctx context.Context, spec driven.DeploySpec) (*driven.DeployResult, error) {
	var project struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/projects", map[string]any{
		"name": spec.Name,
		"gitRepository": map[string]any{
			"repo": spec.RepoURL,
			"type": "github",
		},
		"framework": "other",
	}, &project)
	if err != nil {
		return nil, fmt.Errorf("create vercel project: %w", err)
	}

	for _, ev := range spec.Env {
		err = c.do(ctx, http.MethodPost, "/projects/"+project.ID+"/env", map[string]any{
			"key":    ev.Key,
			"value":  ev.Value,
			"type":   "encrypted",
			"target": []string{"production", "preview", "development"},
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("set vercel env %s: %w", ev.Key, err)
		}
	}

	var deployment struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	err = c.do(ctx, http.MethodPost, "/projects/"+project.ID+"/deployments", map[string]any{
		"target": "production",
	}, &deployment)
	if err != nil {
		return nil, fmt.Errorf("trigger vercel deployment: %w", err)
	}

	logger.Debug("vercel project %s deployment %s created", project.ID, deployment.ID)

	url := deployment.URL
	if url != "" && !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}

	return &driven.DeployResult{
		ServiceID: deployment.ID,
		ProjectID: project.ID,
		URL:       url,
		Status:    "deploying",
	}, nil
}

// Status returns the state of a deployment.
func (c *Client) Status(ctx context.Context, deploymentID string) (*driven.ServiceStatus, error) {
	var deployment struct {
		ReadyState string `json:"readyState"`
		URL        string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/deployments/"+deploymentID, nil, &deployment); err != nil {
		return nil, fmt.Errorf("get vercel deployment: %w", err)
	}

	url := deployment.URL
	if url != "" && !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}
	return &driven.ServiceStatus{
		Status: deployment.ReadyState,
		URL:    url,
	}, nil
}

// do issues one API request, decoding a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
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
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("vercel API %d: %s", resp.StatusCode, string(text))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
