// Package announce generates launch announcement content with an LLM.
//
// Requests go to the OpenAI chat completions endpoint. The model is asked
// for a JSON object so the subject, email body, and social post come back
// in one round trip; a fenced code block around the JSON is tolerated.
package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

const systemPrompt = `You are a product launch copywriter. Respond with a single JSON object
with exactly these keys:
  "subject"     - an email subject line under 80 characters
  "email_html"  - a short HTML announcement email body
  "social_post" - a social media post under 280 characters
Do not include any text outside the JSON object.`

// Announcer generates launch content through an OpenAI-compatible API.
type Announcer struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

var _ driving.Announcer = (*Announcer)(nil)

// Option customises an Announcer.
type Option func(*Announcer)

// WithBaseURL overrides the API endpoint. Used for compatible APIs and tests.
func WithBaseURL(url string) Option {
	return func(a *Announcer) { a.baseURL = strings.TrimRight(url, "/") }
}

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(a *Announcer) { a.model = model }
}

// New creates an Announcer with the given API key.
func New(apiKey string, opts ...Option) (*Announcer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("announce: API key is required")
	}
	a := &Announcer{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type announcementPayload struct {
	Subject    string `json:"subject"`
	EmailHTML  string `json:"email_html"`
	SocialPost string `json:"social_post"`
}

// Announce produces launch content for the application at liveURL.
func (a *Announcer) Announce(ctx context.Context, appName, liveURL string) (*driving.Announcement, error) {
	userPrompt := fmt.Sprintf("The application %q just launched at %s. Write the launch content.", appName, liveURL)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(userPrompt),
	}

	content, err := a.chatCompletion(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generating announcement for %s: %w", appName, err)
	}

	var payload announcementPayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		return nil, fmt.Errorf("decoding announcement content: %w", err)
	}
	if payload.Subject == "" {
		return nil, fmt.Errorf("announcement content missing subject")
	}

	return &driving.Announcement{
		Subject:    payload.Subject,
		EmailHTML:  payload.EmailHTML,
		SocialPost: payload.SocialPost,
	}, nil
}

func (a *Announcer) chatCompletion(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	reqBody := map[string]any{
		"model":       a.model,
		"messages":    messages,
		"temperature": 0.7,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// stripCodeFence unwraps a ```json fenced block if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
