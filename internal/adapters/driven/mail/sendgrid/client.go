// Package sendgrid configures transactional email through the SendGrid v3
// API. Sender identities are registered as verified senders; SendGrid emails
// a confirmation link, so a fresh identity reports Verified false until the
// owner clicks through.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

const defaultBaseURL = "https://api.sendgrid.com/v3"

// Client talks to the SendGrid v3 REST API.
type Client struct {
	apiKey     string
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

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a SendGrid client with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider.
func (c *Client) Name() string { return "sendgrid" }

// VerifyKey checks the API key against the account scopes endpoint.
func (c *Client) VerifyKey(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/scopes", nil, http.StatusOK, nil)
}

type verifiedSenderRequest struct {
	Nickname  string `json:"nickname"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	ReplyTo   string `json:"reply_to"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type verifiedSenderResponse struct {
	ID       int64 `json:"id"`
	Verified bool  `json:"verified"`
}

// SetupSender registers fromEmail as a verified sender identity.
func (c *Client) SetupSender(ctx context.Context, appName, fromEmail string) (*driven.SenderSetup, error) {
	req := verifiedSenderRequest{
		Nickname:  appName,
		FromEmail: fromEmail,
		FromName:  appName,
		ReplyTo:   fromEmail,
		Address:   "Remote",
		City:      "Remote",
		Country:   "US",
	}

	var resp verifiedSenderResponse
	if err := c.do(ctx, http.MethodPost, "/verified_senders", req, http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("registering sender %s: %w", fromEmail, err)
	}

	logger.Debug("sendgrid: sender identity %d created for %s (verified=%v)", resp.ID, fromEmail, resp.Verified)

	detail := "sender registered, confirmation email sent"
	if resp.Verified {
		detail = "sender registered and verified"
	}
	return &driven.SenderSetup{
		Service:   c.Name(),
		FromEmail: fromEmail,
		Verified:  resp.Verified,
		Detail:    detail,
	}, nil
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers a message through the v3 mail send endpoint.
func (c *Client) Send(ctx context.Context, msg driven.Message) error {
	to := make([]emailAddress, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, emailAddress{Email: addr})
	}

	var content []mailContent
	if msg.Text != "" {
		content = append(content, mailContent{Type: "text/plain", Value: msg.Text})
	}
	if msg.HTML != "" {
		content = append(content, mailContent{Type: "text/html", Value: msg.HTML})
	}

	req := mailSendRequest{
		Personalizations: []personalization{{To: to}},
		From:             emailAddress{Email: msg.From},
		Subject:          msg.Subject,
		Content:          content,
	}
	if err := c.do(ctx, http.MethodPost, "/mail/send", req, http.StatusAccepted, nil); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling sendgrid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
