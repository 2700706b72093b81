package domain

import "time"

// Verification pass-rate thresholds.
const (
	// VerifyPassRate is the minimum pass rate for a verification run
	// to be considered successful.
	VerifyPassRate = 90.0

	// VerifyReadyRate is the pass rate at which a deployment is
	// considered production ready.
	VerifyReadyRate = 95.0
)

// CheckResult is the outcome of a single verification check.
type CheckResult struct {
	// Name describes the check (e.g. "Load Landing Page").
	Name string `json:"name"`

	// Passed is the check outcome. Skipped checks count as passed.
	Passed bool `json:"passed"`

	// Skipped marks checks that could not run (e.g. pages behind auth).
	Skipped bool `json:"skipped,omitempty"`

	// StatusCode is the HTTP status observed, when applicable.
	StatusCode int `json:"status_code,omitempty"`

	// Message is a human-readable summary.
	Message string `json:"message,omitempty"`
}

// CheckCategory groups related verification checks.
type CheckCategory struct {
	// Name is the category label (e.g. "Frontend Pages").
	Name string `json:"name"`

	// Checks are the individual results.
	Checks []CheckResult `json:"checks"`
}

// Passed counts the checks in this category that passed.
func (c CheckCategory) Passed() int {
	n := 0
	for _, check := range c.Checks {
		if check.Passed {
			n++
		}
	}
	return n
}

// VerificationReport summarises a full verification run.
type VerificationReport struct {
	// BaseURL is the deployment address that was verified.
	BaseURL string `json:"base_url"`

	// Categories are the grouped check results.
	Categories []CheckCategory `json:"categories"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total verification wall time.
	Elapsed time.Duration `json:"elapsed"`
}

// TotalChecks returns the number of checks across all categories.
func (r *VerificationReport) TotalChecks() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Checks)
	}
	return n
}

// PassedChecks returns the number of passing checks.
func (r *VerificationReport) PassedChecks() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Passed()
	}
	return n
}

// PassRate returns the percentage of checks that passed.
// An empty report has a pass rate of zero.
func (r *VerificationReport) PassRate() float64 {
	total := r.TotalChecks()
	if total == 0 {
		return 0
	}
	return float64(r.PassedChecks()) / float64(total) * 100
}

// Success reports whether the run met the minimum pass rate.
func (r *VerificationReport) Success() bool {
	return r.PassRate() >= VerifyPassRate
}

// DeploymentReady reports whether the run met the production-ready rate.
func (r *VerificationReport) DeploymentReady() bool {
	return r.PassRate() >= VerifyReadyRate
}
