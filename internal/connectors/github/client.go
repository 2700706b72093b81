package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultBranch is the branch files are committed to.
	DefaultBranch = "main"
)

// Ensure Client implements the repository host port.
var _ driven.RepositoryHost = (*Client)(nil)

// Client wraps the go-github client for the deployment pipeline.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter

	// now is injectable for deterministic repository names in tests.
	now func() time.Time
}

// NewClient creates a GitHub client with a static access token.
// Works for both PAT and OAuth access tokens.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		gh:          gh.NewClient(tc),
		rateLimiter: NewRateLimiter(),
		now:         time.Now,
	}
}

// NewClientWithBaseURL creates a client against a non-default API base
// URL. Used by tests to point the client at a local server.
func NewClientWithBaseURL(ctx context.Context, token, baseURL string) (*Client, error) {
	c := NewClient(ctx, token)
	api, err := c.gh.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("set base URL: %w", err)
	}
	c.gh = api
	return c, nil
}

// CreateRepository creates a repository with a timestamp-suffixed name
// so repeated deploys of the same application never collide.
func (c *Client) CreateRepository(ctx context.Context, name, description string, private bool) (*driven.Repository, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	uniqueName := fmt.Sprintf("%s-%d", name, c.now().Unix())
	repo := &gh.Repository{
		Name:              gh.Ptr(uniqueName),
		Description:       gh.Ptr(description),
		Private:           gh.Ptr(private),
		AutoInit:          gh.Ptr(true),
		GitignoreTemplate: gh.Ptr("Python"),
	}

	created, resp, err := c.gh.Repositories.Create(ctx, "", repo)
	if err != nil {
		return nil, c.wrapError(err, "create repository")
	}
	c.updateRateLimitFromResponse(resp)

	logger.Debug("created repository %s", created.GetFullName())

	return &driven.Repository{
		FullName:      created.GetFullName(),
		HTMLURL:       created.GetHTMLURL(),
		CloneURL:      created.GetCloneURL(),
		DefaultBranch: DefaultBranch,
		Private:       created.GetPrivate(),
	}, nil
}

// UploadFiles commits each file through the Contents API. Failures are
// collected per file; the upload succeeds only if every file commits.
func (c *Client) UploadFiles(ctx context.Context, repoFullName string, files map[string]string, commitMessage string) (*driven.UploadReport, error) {
	owner, repo, err := splitFullName(repoFullName)
	if err != nil {
		return nil, err
	}

	report := &driven.UploadReport{
		Failed: make(map[string]string),
	}

	for _, path := range sortedKeys(files) {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		if err := c.uploadFile(ctx, owner, repo, path, files[path], commitMessage); err != nil {
			logger.Warn("upload %s failed: %v", path, err)
			report.Failed[path] = err.Error()
			continue
		}
		report.Uploaded = append(report.Uploaded, path)
	}

	return report, nil
}

func (c *Client) uploadFile(ctx context.Context, owner, repo, path, content, message string) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: []byte(content),
		Branch:  gh.Ptr(DefaultBranch),
	}

	_, resp, err := c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	if err != nil {
		return c.wrapError(err, "create file")
	}
	c.updateRateLimitFromResponse(resp)
	return nil
}

// CreateWorkflowFile commits a GitHub Actions workflow under
// .github/workflows and returns the committed path.
func (c *Client) CreateWorkflowFile(ctx context.Context, repoFullName, workflowName, content string) (string, error) {
	owner, repo, err := splitFullName(repoFullName)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf(".github/workflows/%s.yml", workflowName)
	message := fmt.Sprintf("Add %s workflow", workflowName)
	if err := c.uploadFile(ctx, owner, repo, path, content, message); err != nil {
		return "", err
	}
	return path, nil
}

// GetRepository fetches repository details.
func (c *Client) GetRepository(ctx context.Context, fullName string) (*driven.Repository, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, c.wrapError(err, "get repository")
	}
	c.updateRateLimitFromResponse(resp)

	return &driven.Repository{
		FullName:      repository.GetFullName(),
		HTMLURL:       repository.GetHTMLURL(),
		CloneURL:      repository.GetCloneURL(),
		DefaultBranch: repository.GetDefaultBranch(),
		Private:       repository.GetPrivate(),
	}, nil
}

// ValidateCredentials checks if the configured token is valid by making an API call.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return c.wrapError(err, "validate credentials")
	}
	c.updateRateLimitFromResponse(resp)
	return nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}

// splitFullName splits "owner/name" into its parts.
func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoName, fullName)
	}
	return parts[0], parts[1], nil
}

// sortedKeys returns map keys in stable order so uploads and their
// commits are deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
