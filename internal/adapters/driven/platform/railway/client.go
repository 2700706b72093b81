// Package railway implements the PlatformDeployer port for Railway.
//
// Railway exposes a GraphQL API. A deployment is three mutations:
// projectCreate, serviceCreate (attaching the repository), and one
// variableUpsert per environment variable.
package railway

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

// DefaultEndpoint is the Railway GraphQL endpoint.
const DefaultEndpoint = "https://backboard.railway.app/graphql"

const (
	projectCreateMutation = `
mutation projectCreate($input: ProjectCreateInput!) {
    projectCreate(input: $input) {
        id
        name
    }
}`

	serviceCreateMutation = `
mutation serviceCreate($input: ServiceCreateInput!) {
    serviceCreate(input: $input) {
        id
        name
    }
}`

	variableUpsertMutation = `
mutation variableUpsert($input: VariableUpsertInput!) {
    variableUpsert(input: $input) {
        id
    }
}`
)

// Ensure Client implements the port.
var _ driven.PlatformDeployer = (*Client)(nil)

// Client is a Railway GraphQL API client.
type Client struct {
	token    string
	endpoint string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint. Used by tests.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// New creates a Railway client.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:    token,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform identifies this deployer.
func (c *Client) Platform() domain.Platform {
	return domain.PlatformRailway
}

// Deploy creates a project, attaches the repository as a service, and
// upserts each environment variable.
func (c *Client) Deploy(ctx context.Context, spec driven.DeploySpec) (*driven.DeployResult, error) {
	branch := spec.Branch
	if branch == "" {
		branch = "main"
	}

	var project struct {
		ProjectCreate struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"projectCreate"`
	}
	err := c.mutate(ctx, projectCreateMutation, map[string]any{
		"input": map[string]any{
			"name":        spec.Name,
			"description": fmt.Sprintf("Autonomous deployment of %s", spec.Name),
			"isPublic":    false,
		},
	}, &project)
	if err != nil {
		return nil, fmt.Errorf("create railway project: %w", err)
	}

	var service struct {
		ServiceCreate struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"serviceCreate"`
	}
	err = c.mutate(ctx, serviceCreateMutation, map[string]any{
		"input": map[string]any{
			"projectId": project.ProjectCreate.ID,
			"name":      "web-service",
			"source": map[string]any{
				"repo":   spec.RepoURL,
				"branch": branch,
			},
		},
	}, &service)
	if err != nil {
		return nil, fmt.Errorf("create railway service: %w", err)
	}

	serviceID := service.ServiceCreate.ID
	for _, ev := range spec.Env {
		err = c.mutate(ctx, variableUpsertMutation, map[string]any{
			"input": map[string]any{
				"serviceId": serviceID,
				"name":      ev.Key,
				"value":     ev.Value,
			},
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("set railway variable %s: %w", ev.Key, err)
		}
	}

	logger.Debug("railway project %s service %s created", project.ProjectCreate.ID, serviceID)

	return &driven.DeployResult{
		ServiceID: serviceID,
		ProjectID: project.ProjectCreate.ID,
		URL:       fmt.Sprintf("https://%s.railway.app", serviceID),
		Status:    "deploying",
	}, nil
}

// Status is not exposed by the public deployment mutations; callers
// should probe the service URL instead.
func (c *Client) Status(_ context.Context, _ string) (*driven.ServiceStatus, error) {
	return nil, domain.ErrNotImplemented
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// mutate executes a GraphQL mutation and decodes data into out.
func (c *Client) mutate(ctx context.Context, query string, variables map[string]any, out any) error {
	encoded, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode mutation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
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

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("railway API %d: %s", resp.StatusCode, string(text))
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("railway GraphQL: %s", gqlResp.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
