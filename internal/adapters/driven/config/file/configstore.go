package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const configFileName = "config.toml"

// ConfigStore persists CLI configuration as a TOML file under the
// shipforge config directory. Nested tables are exposed through
// dot-notation keys, so [validate] required_files reads back as
// "validate.required_files".
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	data map[string]any
}

// NewConfigStore opens the config store rooted at configDir, creating
// the directory when needed. An empty configDir means ~/.shipforge.
func NewConfigStore(configDir string) (*ConfigStore, error) {
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

	s := &ConfigStore{
		path: filepath.Join(configDir, configFileName),
		data: map[string]any{},
	}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Get returns the raw value for key and whether it is set.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString returns the string value for key, or "".
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt returns the integer value for key, or 0. TOML decodes
// integers as int64, so both widths are accepted.
func (s *ConfigStore) GetInt(key string) int {
	switch v, _ := s.Get(key); n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// GetBool returns the boolean value for key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice returns the string slice value for key, or nil.
// TOML arrays decode as []any; non-string elements are dropped.
func (s *ConfigStore) GetStringSlice(key string) []string {
	switch v, _ := s.Get(key); arr := v.(type) {
	case []string:
		return arr
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Set stores value under key and writes the file immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.write()
}

// Save writes the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// write marshals and persists the data map. Caller holds the lock.
func (s *ConfigStore) write() error {
	out, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, out, 0600)
}

// Load replaces the in-memory map with the file contents. A missing
// file loads as an empty configuration.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = map[string]any{}
			return nil
		}
		return err
	}

	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	s.data = map[string]any{}
	flattenInto(s.data, "", decoded)
	return nil
}

// flattenInto walks nested TOML tables and records leaf values under
// dot-joined keys in dst.
func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(dst, full, table)
			continue
		}
		dst[full] = value
	}
}

// Path reports where the configuration is persisted.
func (s *ConfigStore) Path() string {
	return s.path
}
