package domain

// Manifest describes the file set a deployable project must contain.
type Manifest struct {
	// RequiredFiles are paths (relative to the project root) that must exist.
	RequiredFiles []string `json:"required_files"`

	// RequiredTemplates are template paths that must exist.
	RequiredTemplates []string `json:"required_templates"`
}

// TotalRequired returns the number of required entries.
func (m Manifest) TotalRequired() int {
	return len(m.RequiredFiles) + len(m.RequiredTemplates)
}

// All returns every required path, files first.
func (m Manifest) All() []string {
	all := make([]string, 0, m.TotalRequired())
	all = append(all, m.RequiredFiles...)
	all = append(all, m.RequiredTemplates...)
	return all
}

// DefaultManifest is the file set of the generated SaaS MVP layout:
// a Flask-style app with auth, models, and the standard page templates.
func DefaultManifest() Manifest {
	return Manifest{
		RequiredFiles: []string{
			"main.py",
			"requirements.txt",
			"auth.py",
			"models.py",
		},
		RequiredTemplates: []string{
			"templates/index.html",
			"templates/login.html",
			"templates/signup.html",
			"templates/dashboard.html",
			"templates/pricing.html",
		},
	}
}

// ValidationResult reports which manifest entries were found.
type ValidationResult struct {
	// Present are the required paths that exist.
	Present []string `json:"present"`

	// Missing are the required paths that do not exist.
	Missing []string `json:"missing"`

	// TotalRequired is the manifest size.
	TotalRequired int `json:"total_required"`
}

// Success reports whether every required path was found.
func (v ValidationResult) Success() bool {
	return len(v.Missing) == 0
}
