// Package mailgun configures transactional email through the Mailgun v3/v4
// API. Mailgun authenticates with HTTP basic auth ("api", key) and accepts
// form-encoded request bodies rather than JSON.
package mailgun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

const defaultBaseURL = "https://api.mailgun.net"

// Client talks to the Mailgun REST API for a single sending domain.
type Client struct {
	apiKey     string
	domain     string
	baseURL    string
	httpClient *http.Client
}

var _ driven.Mailer = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a Mailgun client scoped to the given sending domain.
func New(apiKey, domain string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		domain:     domain,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider.
func (c *Client) Name() string { return "mailgun" }

// VerifyKey checks the API key by listing domains on the account.
func (c *Client) VerifyKey(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/v4/domains", nil, http.StatusOK)
	return err
}

type domainResponse struct {
	Domain struct {
		Name  string `json:"name"`
		State string `json:"state"`
	} `json:"domain"`
}

// SetupSender provisions the sending domain if Mailgun does not know it yet.
// A newly created domain reports Verified false until its DNS records
// propagate and Mailgun's checks pass.
func (c *Client) SetupSender(ctx context.Context, appName, fromEmail string) (*driven.SenderSetup, error) {
	path := "/v4/domains/" + url.PathEscape(c.domain)
	data, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		logger.Debug("mailgun: domain %s not found, creating", c.domain)
		form := url.Values{}
		form.Set("name", c.domain)
		if data, err = c.do(ctx, http.MethodPost, "/v4/domains", form, http.StatusOK); err != nil {
			return nil, fmt.Errorf("creating domain %s: %w", c.domain, err)
		}
	}

	var resp domainResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding domain response: %w", err)
	}

	verified := resp.Domain.State == "active"
	detail := fmt.Sprintf("domain %s state %s", c.domain, resp.Domain.State)
	return &driven.SenderSetup{
		Service:   c.Name(),
		FromEmail: fromEmail,
		Verified:  verified,
		Detail:    detail,
	}, nil
}

// Send delivers a message through the messages endpoint of the sending domain.
func (c *Client) Send(ctx context.Context, msg driven.Message) error {
	form := url.Values{}
	form.Set("from", msg.From)
	for _, addr := range msg.To {
		form.Add("to", addr)
	}
	form.Set("subject", msg.Subject)
	if msg.Text != "" {
		form.Set("text", msg.Text)
	}
	if msg.HTML != "" {
		form.Set("html", msg.HTML)
	}

	path := fmt.Sprintf("/v3/%s/messages", url.PathEscape(c.domain))
	if _, err := c.do(ctx, http.MethodPost, path, form, http.StatusOK); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, wantStatus int) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth("api", c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling mailgun: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("mailgun %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	return data, nil
}
