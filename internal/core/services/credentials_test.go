package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

type fakeCredStore struct {
	values map[string]string
}

func newFakeCredStore() *fakeCredStore {
	return &fakeCredStore{values: make(map[string]string)}
}

func (f *fakeCredStore) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeCredStore) Get(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeCredStore) All(context.Context) (domain.Credentials, error) {
	out := make(domain.Credentials, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCredStore) Delete(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func TestResolve_StoreBeforeEnvironment(t *testing.T) {
	store := newFakeCredStore()
	store.values[domain.CredGitHubToken] = "ghp_stored"
	t.Setenv(domain.CredGitHubToken, "ghp_env")
	svc := NewCredentialsService(store)

	val, err := svc.Resolve(context.Background(), domain.CredGitHubToken)
	require.NoError(t, err)
	assert.Equal(t, "ghp_stored", val)
}

func TestResolve_EnvironmentFallback(t *testing.T) {
	t.Setenv(domain.CredRenderAPIKey, "rnd_env")
	svc := NewCredentialsService(newFakeCredStore())

	val, err := svc.Resolve(context.Background(), domain.CredRenderAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "rnd_env", val)
}

func TestResolveAll_OmitsEmptyKeys(t *testing.T) {
	store := newFakeCredStore()
	store.values[domain.CredGitHubToken] = "ghp_x"
	store.values[domain.CredSendGridKey] = "SG.x"
	svc := NewCredentialsService(store)

	creds, err := svc.ResolveAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ghp_x", creds.Get(domain.CredGitHubToken))
	assert.True(t, creds.Has(domain.CredSendGridKey))
	assert.False(t, creds.Has(domain.CredVercelToken))
}

func TestSet_RejectsUnknownKey(t *testing.T) {
	svc := NewCredentialsService(newFakeCredStore())

	err := svc.Set(context.Background(), "NOT_A_KEY", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, svc.Set(context.Background(), domain.CredVercelToken, "vc_x"))
}

func TestSetAndDelete_RequireStore(t *testing.T) {
	svc := NewCredentialsService(nil)

	assert.Error(t, svc.Set(context.Background(), domain.CredGitHubToken, "x"))
	assert.Error(t, svc.Delete(context.Background(), domain.CredGitHubToken))
}
