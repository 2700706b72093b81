package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("deploy.platform", "render"))

	val, ok := store.Get("deploy.platform")
	assert.True(t, ok)
	assert.Equal(t, "render", val)

	_, ok = store.Get("nonexistent")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("deploy.platform", "railway"))
	require.NoError(t, store.Set("watch.debounce_ms", 500))
	require.NoError(t, store.Set("deploy.private_repo", true))

	assert.Equal(t, "railway", store.GetString("deploy.platform"))
	assert.Equal(t, 500, store.GetInt("watch.debounce_ms"))
	assert.True(t, store.GetBool("deploy.private_repo"))

	// Missing keys return zero values.
	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))

	// Type mismatches return zero values.
	assert.Equal(t, "", store.GetString("watch.debounce_ms"))
	assert.Equal(t, 0, store.GetInt("deploy.platform"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("deploy.platform", "vercel"))
	require.NoError(t, store1.Set("watch.debounce_ms", 750))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "vercel", store2.GetString("deploy.platform"))
	assert.Equal(t, 750, store2.GetInt("watch.debounce_ms"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("[deploy]\nplatform = \"render\"\n\n[deploy.env]\ndebug = false\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "render", store.GetString("deploy.platform"))
	assert.False(t, store.GetBool("deploy.env.debug"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_MissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("[verify]\nskip_paths = [\"/admin\", \"/debug\"]\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"/admin", "/debug"}, store.GetStringSlice("verify.skip_paths"))
	assert.Nil(t, store.GetStringSlice("missing"))
}
