package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrPlatformUnavailable indicates the requested deployment platform
	// has no credentials configured.
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrCredentialsMissing indicates a provider token required for the
	// operation is not configured.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrValidationFailed indicates the local project file set is missing
	// required files.
	ErrValidationFailed = errors.New("project validation failed")

	// ErrRepositoryRequired indicates the platform deploy needs a source
	// repository but none was created.
	ErrRepositoryRequired = errors.New("repository required for deployment")

	// ErrVerificationFailed indicates post-deploy verification fell below
	// the required pass rate.
	ErrVerificationFailed = errors.New("deployment verification failed")

	// ErrRateLimited indicates an API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoRegistrar indicates no domain registrar could complete the
	// requested domain setup.
	ErrNoRegistrar = errors.New("no registrar could set up the domain")
)
