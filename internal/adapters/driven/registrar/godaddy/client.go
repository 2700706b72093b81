// Package godaddy implements the Registrar port against the GoDaddy
// domains API: check availability, then replace the domain's records
// with CNAMEs at the deployment host.
package godaddy

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
)

// DefaultBaseURL is the GoDaddy API root.
const DefaultBaseURL = "https://api.godaddy.com/v1"

// recordTTL is the TTL applied to created records, in seconds.
const recordTTL = 600

// Ensure Client implements the port.
var _ driven.Registrar = (*Client)(nil)

// Client is a GoDaddy API client.
type Client struct {
	apiKey  string
	secret  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a GoDaddy client. Authentication uses the sso-key scheme
// with an API key and secret pair.
func New(apiKey, secret string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		secret:  secret,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the registrar.
func (c *Client) Name() string { return "godaddy" }

// CheckAvailability queries the availability endpoint.
func (c *Client) CheckAvailability(ctx context.Context, domain string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/domains/available?domain="+url.QueryEscape(domain), nil)
	if err != nil {
		return false, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, fmt.Errorf("godaddy API %d: %s", resp.StatusCode, string(text))
	}

	var result struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return result.Available, nil
}

// SetupDomain replaces the domain's DNS records with CNAMEs pointing
// apex and www at the deployment host. SSL stays pending: GoDaddy does
// not provision certificates through this API.
func (c *Client) SetupDomain(ctx context.Context, domain, target string) (*driven.DomainSetup, error) {
	host, err := targetHost(target)
	if err != nil {
		return nil, err
	}

	records := []driven.DNSRecord{
		{Type: "CNAME", Name: "@", Content: host},
		{Type: "CNAME", Name: "www", Content: host},
	}

	payload := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		payload = append(payload, map[string]any{
			"type": rec.Type,
			"name": rec.Name,
			"data": rec.Content,
			"ttl":  recordTTL,
		})
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/domains/"+domain+"/records", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("godaddy DNS update %d: %s", resp.StatusCode, string(text))
	}

	return &driven.DomainSetup{
		Domain:    domain,
		Records:   records,
		SSLStatus: "pending",
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", c.apiKey, c.secret))
}

func targetHost(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target URL: %w", err)
	}
	if u.Host == "" {
		return target, nil
	}
	return u.Host, nil
}
