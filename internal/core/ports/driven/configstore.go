package driven

// ConfigStore reads and writes CLI configuration such as the required
// file manifest, default platform, and notification addresses. Keys are
// dotted paths ("validate.required_files", "pagerduty.from_email").
type ConfigStore interface {
	// Get returns the raw value for key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns the value for key as a string, or "" when the key
	// is unset or holds another type.
	GetString(key string) string

	// GetInt returns the value for key as an int, or 0 when unset.
	GetInt(key string) int

	// GetBool returns the value for key as a bool, or false when unset.
	GetBool(key string) bool

	// GetStringSlice returns the value for key as a string slice, or nil
	// when unset.
	GetStringSlice(key string) []string

	// Set stores a value under key and persists it.
	Set(key string, value any) error

	// Save writes the current configuration to its backing store.
	Save() error

	// Load reads configuration from the backing store.
	Load() error

	// Path reports where the configuration is persisted.
	Path() string
}
