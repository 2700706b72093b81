package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// ValidationService checks a local project tree against the manifest of
// required files before anything is deployed.
type ValidationService struct {
	config driven.ConfigStore
}

// NewValidationService creates a validation service. The config store
// may override the default manifest; nil uses the default.
func NewValidationService(config driven.ConfigStore) *ValidationService {
	return &ValidationService{config: config}
}

// Manifest returns the effective manifest: config-provided required
// paths when set, the default MVP layout otherwise.
func (s *ValidationService) Manifest() domain.Manifest {
	m := domain.DefaultManifest()
	if s.config == nil {
		return m
	}
	if files := s.config.GetStringSlice("validate.required_files"); len(files) > 0 {
		m.RequiredFiles = files
	}
	if templates := s.config.GetStringSlice("validate.required_templates"); len(templates) > 0 {
		m.RequiredTemplates = templates
	}
	return m
}

// ValidateFiles checks that every manifest entry exists under path.
func (s *ValidationService) ValidateFiles(path string) (*domain.ValidationResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("project path %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory: %w", path, domain.ErrInvalidInput)
	}

	manifest := s.Manifest()
	result := &domain.ValidationResult{TotalRequired: manifest.TotalRequired()}

	for _, rel := range manifest.All() {
		if _, err := os.Stat(filepath.Join(path, rel)); err != nil {
			logger.Debug("validate: missing %s", rel)
			result.Missing = append(result.Missing, rel)
			continue
		}
		result.Present = append(result.Present, rel)
	}

	return result, nil
}
