package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore persists provider API tokens in a TOML file.
// The file is written with 0600 permissions since it holds secrets.
type CredentialsStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]string
}

// NewCredentialsStore creates a TOML-backed credentials store.
// If configDir is empty, defaults to ~/.shipforge/credentials.toml.
func NewCredentialsStore(configDir string) (*CredentialsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".shipforge")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &CredentialsStore{
		filePath: filepath.Join(configDir, "credentials.toml"),
		data:     make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores or updates a credential and persists immediately.
func (s *CredentialsStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Get retrieves a credential value. Unset keys return "".
func (s *CredentialsStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[key], nil
}

// All returns a copy of every stored credential.
func (s *CredentialsStore) All(_ context.Context) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(domain.Credentials, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

// Delete removes a credential and persists immediately.
func (s *CredentialsStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return s.save()
}

// Path returns the credentials file path.
func (s *CredentialsStore) Path() string {
	return s.filePath
}

// save writes credentials to the TOML file (caller must hold lock).
func (s *CredentialsStore) save() error {
	data, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

func (s *CredentialsStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	loaded := make(map[string]string)
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.data = loaded
	return nil
}
