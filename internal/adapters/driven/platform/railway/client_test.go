package railway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

// graphQLHandler routes mutations by operation name substring.
func graphQLHandler(t *testing.T, variables *[]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case strings.Contains(req.Query, "projectCreate"):
			_, _ = w.Write([]byte(`{"data": {"projectCreate": {"id": "proj-1", "name": "app"}}}`))
		case strings.Contains(req.Query, "serviceCreate"):
			input := req.Variables["input"].(map[string]any)
			assert.Equal(t, "proj-1", input["projectId"])
			_, _ = w.Write([]byte(`{"data": {"serviceCreate": {"id": "svc-1", "name": "web-service"}}}`))
		case strings.Contains(req.Query, "variableUpsert"):
			*variables = append(*variables, req.Variables["input"].(map[string]any))
			_, _ = w.Write([]byte(`{"data": {"variableUpsert": {"id": "var-1"}}}`))
		default:
			t.Fatalf("unexpected mutation: %s", req.Query)
		}
	}
}

func TestDeploy(t *testing.T) {
	var variables []map[string]any
	srv := httptest.NewServer(graphQLHandler(t, &variables))
	defer srv.Close()

	client := New("rw_test", WithEndpoint(srv.URL))
	result, err := client.Deploy(context.Background(), driven.DeploySpec{
		Name:    "app",
		RepoURL: "https://github.com/octocat/app",
		Env: []domain.EnvVar{
			{Key: "SESSION_SECRET", Value: "abc"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "svc-1", result.ServiceID)
	assert.Equal(t, "proj-1", result.ProjectID)
	assert.Equal(t, "https://svc-1.railway.app", result.URL)

	require.Len(t, variables, 1)
	assert.Equal(t, "SESSION_SECRET", variables[0]["name"])
	assert.Equal(t, "svc-1", variables[0]["serviceId"])
}

func TestDeploy_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [{"message": "Not Authorized"}]}`))
	}))
	defer srv.Close()

	client := New("bad-token", WithEndpoint(srv.URL))
	_, err := client.Deploy(context.Background(), driven.DeploySpec{Name: "app", RepoURL: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not Authorized")
}

func TestStatus_NotImplemented(t *testing.T) {
	client := New("rw_test")
	_, err := client.Status(context.Background(), "svc-1")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
