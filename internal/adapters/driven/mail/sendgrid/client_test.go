package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

func TestVerifyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scopes", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"scopes": ["mail.send"]}`))
	}))
	defer srv.Close()

	client := New("sg-key", WithBaseURL(srv.URL))
	require.NoError(t, client.VerifyKey(context.Background()))
}

func TestVerifyKey_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New("bad", WithBaseURL(srv.URL))
	require.Error(t, client.VerifyKey(context.Background()))
}

func TestSetupSender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/verified_senders", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "content-optimizer", req["nickname"])
		assert.Equal(t, "noreply@content-optimizer.com", req["from_email"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "verified": false}`))
	}))
	defer srv.Close()

	client := New("sg-key", WithBaseURL(srv.URL))
	setup, err := client.SetupSender(context.Background(), "content-optimizer", "noreply@content-optimizer.com")
	require.NoError(t, err)

	assert.Equal(t, "sendgrid", setup.Service)
	assert.Equal(t, "noreply@content-optimizer.com", setup.FromEmail)
	assert.False(t, setup.Verified)
}

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mail/send", r.URL.Path)

		var req mailSendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Personalizations, 1)
		assert.Equal(t, "user@example.com", req.Personalizations[0].To[0].Email)
		assert.Equal(t, "Welcome", req.Subject)
		require.Len(t, req.Content, 2)
		assert.Equal(t, "text/plain", req.Content[0].Type)
		assert.Equal(t, "text/html", req.Content[1].Type)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := New("sg-key", WithBaseURL(srv.URL))
	err := client.Send(context.Background(), driven.Message{
		From:    "noreply@content-optimizer.com",
		To:      []string{"user@example.com"},
		Subject: "Welcome",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	require.NoError(t, err)
}
