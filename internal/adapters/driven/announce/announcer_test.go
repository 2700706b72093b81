package announce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionWith(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestAnnounce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		content := `{"subject": "content-optimizer is live", "email_html": "<p>We launched.</p>", "social_post": "We just shipped!"}`
		_, _ = w.Write([]byte(completionWith(content)))
	}))
	defer srv.Close()

	announcer, err := New("sk-test", WithBaseURL(srv.URL))
	require.NoError(t, err)

	ann, err := announcer.Announce(context.Background(), "content-optimizer", "https://content-optimizer.onrender.com")
	require.NoError(t, err)

	assert.Equal(t, "content-optimizer is live", ann.Subject)
	assert.Equal(t, "<p>We launched.</p>", ann.EmailHTML)
	assert.Equal(t, "We just shipped!", ann.SocialPost)
}

func TestAnnounce_FencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		content := "```json\n{\"subject\": \"Live\", \"email_html\": \"<p>hi</p>\", \"social_post\": \"hi\"}\n```"
		_, _ = w.Write([]byte(completionWith(content)))
	}))
	defer srv.Close()

	announcer, err := New("sk-test", WithBaseURL(srv.URL))
	require.NoError(t, err)

	ann, err := announcer.Announce(context.Background(), "app", "https://app.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Live", ann.Subject)
}

func TestAnnounce_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	announcer, err := New("sk-bad", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = announcer.Announce(context.Background(), "app", "https://app.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
}
