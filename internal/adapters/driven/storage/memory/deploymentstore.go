// Package memory provides in-memory implementations of driven storage
// ports, used in tests and as a fallback when the SQLite store is
// unavailable.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

// Ensure DeploymentStore implements the interface.
var _ driven.DeploymentStore = (*DeploymentStore)(nil)

// DeploymentStore is an in-memory implementation of driven.DeploymentStore.
type DeploymentStore struct {
	mu          sync.RWMutex
	deployments map[string]domain.Deployment
}

// NewDeploymentStore creates a new in-memory deployment store.
func NewDeploymentStore() *DeploymentStore {
	return &DeploymentStore{
		deployments: make(map[string]domain.Deployment),
	}
}

// Save stores or updates a deployment record.
func (s *DeploymentStore) Save(_ context.Context, d domain.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployments[d.ID] = d
	return nil
}

// Get retrieves a deployment by ID.
func (s *DeploymentStore) Get(_ context.Context, id string) (*domain.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deployments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

// List returns all deployments, most recent first.
func (s *DeploymentStore) List(_ context.Context) ([]domain.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Deployment, 0, len(s.deployments))
	for _, d := range s.deployments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a deployment record.
func (s *DeploymentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deployments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.deployments, id)
	return nil
}
