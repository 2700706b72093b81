// Package cloudflare implements the Registrar port against the
// Cloudflare v4 API: create a zone, point CNAME records at the
// deployment, and enable flexible SSL.
package cloudflare

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

// DefaultBaseURL is the Cloudflare client API root.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// Ensure Client implements the port.
var _ driven.Registrar = (*Client)(nil)

// Client is a Cloudflare API client.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a Cloudflare client.
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

// Name identifies the registrar.
func (c *Client) Name() string { return "cloudflare" }

type apiEnvelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CheckAvailability reports whether no zone exists yet for the domain.
func (c *Client) CheckAvailability(ctx context.Context, domain string) (bool, error) {
	var zones []struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, "/zones?name="+url.QueryEscape(domain), nil, &zones); err != nil {
		return false, err
	}
	return len(zones) == 0, nil
}

// SetupDomain creates the zone, CNAMEs apex and www at the deployment
// host, and enables flexible SSL.
func (c *Client) SetupDomain(ctx context.Context, domain, target string) (*driven.DomainSetup, error) {
	host, err := targetHost(target)
	if err != nil {
		return nil, err
	}

	var zone struct {
		ID          string   `json:"id"`
		NameServers []string `json:"name_servers"`
	}
	err = c.do(ctx, http.MethodPost, "/zones", map[string]any{
		"name":       domain,
		"jump_start": true,
	}, &zone)
	if err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}

	records := []driven.DNSRecord{
		{Type: "CNAME", Name: "@", Content: host, Proxied: true},
		{Type: "CNAME", Name: "www", Content: host, Proxied: true},
	}
	for _, rec := range records {
		err = c.do(ctx, http.MethodPost, "/zones/"+zone.ID+"/dns_records", map[string]any{
			"type":    rec.Type,
			"name":    rec.Name,
			"content": rec.Content,
			"ttl":     1, // automatic
			"proxied": rec.Proxied,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("create %s record: %w", rec.Name, err)
		}
	}

	sslStatus := "pending"
	err = c.do(ctx, http.MethodPatch, "/zones/"+zone.ID+"/settings/ssl", map[string]any{
		"value": "flexible",
	}, nil)
	if err != nil {
		// DNS is in place; SSL provisioning can finish later.
		logger.Warn("cloudflare ssl enablement failed: %v", err)
	} else {
		sslStatus = "active"
	}

	return &driven.DomainSetup{
		Domain:    domain,
		Records:   records,
		SSLStatus: sslStatus,
	}, nil
}

// do issues one API request and unwraps the Cloudflare envelope.
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

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.Success {
		msg := "unknown error"
		if len(envelope.Errors) > 0 {
			msg = envelope.Errors[0].Message
		}
		return fmt.Errorf("cloudflare API %d: %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// targetHost extracts the host from a deployment URL.
func targetHost(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target URL: %w", err)
	}
	if u.Host == "" {
		return target, nil // already a bare host
	}
	return u.Host, nil
}
