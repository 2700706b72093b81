package driven

import "context"

// Repository describes a created or fetched source repository.
type Repository struct {
	// FullName is the "owner/name" identifier.
	FullName string

	// HTMLURL is the web address of the repository.
	HTMLURL string

	// CloneURL is the https clone address.
	CloneURL string

	// DefaultBranch is the default branch name.
	DefaultBranch string

	// Private indicates repository visibility.
	Private bool
}

// UploadReport summarises a multi-file upload.
type UploadReport struct {
	// Uploaded are the paths committed successfully.
	Uploaded []string

	// Failed maps paths to the error that prevented their upload.
	Failed map[string]string
}

// Success reports whether every file was uploaded.
func (r UploadReport) Success() bool {
	return len(r.Failed) == 0
}

// RepositoryHost creates and populates source repositories.
// The GitHub connector is the only implementation.
type RepositoryHost interface {
	// CreateRepository creates a repository with a unique name derived
	// from the given name, and returns its identifiers.
	CreateRepository(ctx context.Context, name, description string, private bool) (*Repository, error)

	// UploadFiles commits the given path->content map to the repository.
	UploadFiles(ctx context.Context, repoFullName string, files map[string]string, commitMessage string) (*UploadReport, error)

	// CreateSecret stores an encrypted Actions secret on the repository.
	CreateSecret(ctx context.Context, repoFullName, name, value string) error

	// CreateWorkflowFile commits a GitHub Actions workflow file.
	CreateWorkflowFile(ctx context.Context, repoFullName, workflowName, content string) (string, error)

	// GetRepository fetches repository details.
	GetRepository(ctx context.Context, fullName string) (*Repository, error)

	// ValidateCredentials checks the configured token with a live call.
	ValidateCredentials(ctx context.Context) error
}
