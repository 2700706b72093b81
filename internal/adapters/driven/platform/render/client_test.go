package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

func TestDeploy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/services", r.URL.Path)
		require.Equal(t, "Bearer rnd_test", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "web_service", payload["type"])
		assert.Equal(t, "content-optimizer", payload["name"])
		assert.Equal(t, "main", payload["branch"])
		assert.Len(t, payload["envVars"], 2)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "srv-123",
			"serviceDetails": {"url": "https://content-optimizer.onrender.com"}
		}`))
	}))
	defer srv.Close()

	client := New("rnd_test", WithBaseURL(srv.URL))
	result, err := client.Deploy(context.Background(), driven.DeploySpec{
		Name:    "content-optimizer",
		RepoURL: "https://github.com/octocat/content-optimizer",
		Env: []domain.EnvVar{
			{Key: "SESSION_SECRET", Value: "abc"},
			{Key: "STRIPE_SECRET_KEY", Value: "sk_test"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "srv-123", result.ServiceID)
	assert.Equal(t, "https://content-optimizer.onrender.com", result.URL)
	assert.Equal(t, "deploying", result.Status)
}

func TestDeploy_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"message": "plan limit reached"}`))
	}))
	defer srv.Close()

	client := New("rnd_test", WithBaseURL(srv.URL))
	_, err := client.Deploy(context.Background(), driven.DeploySpec{Name: "app", RepoURL: "https://example.com/repo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan limit reached")
	assert.Contains(t, err.Error(), "402")
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services/srv-123", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "srv-123",
			"serviceDetails": {"url": "https://app.onrender.com", "status": "live"}
		}`))
	}))
	defer srv.Close()

	client := New("rnd_test", WithBaseURL(srv.URL))
	status, err := client.Status(context.Background(), "srv-123")
	require.NoError(t, err)

	assert.Equal(t, "live", status.Status)
	assert.Equal(t, "https://app.onrender.com", status.URL)
}

func TestPlatform(t *testing.T) {
	assert.Equal(t, domain.PlatformRender, New("k").Platform())
}
