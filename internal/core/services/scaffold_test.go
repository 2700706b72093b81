package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

var scaffoldEnv = []domain.EnvVar{
	{Key: "OPENAI_API_KEY", Value: "sk-secret"},
	{Key: "SESSION_SECRET", Value: "deadbeef"},
	{Key: "FLASK_ENV", Value: "production"},
}

func TestGenerate_FileSet(t *testing.T) {
	svc := NewScaffoldService()

	files, err := svc.Generate("My App", domain.PlatformRender, scaffoldEnv)
	require.NoError(t, err)

	for _, name := range []string{
		"render.yaml", "railway.toml", "vercel.json", "app.json",
		"Procfile", "Dockerfile", "docker-compose.yml",
	} {
		assert.Contains(t, files, name)
	}
	assert.Equal(t, "web: gunicorn main:app --bind 0.0.0.0:$PORT\n", files["Procfile"])
	assert.NotContains(t, files, "sentry_config.py")
}

func TestGenerate_SentrySnippet(t *testing.T) {
	svc := NewScaffoldService()
	env := append(scaffoldEnv, domain.EnvVar{Key: "SENTRY_DSN", Value: "https://key@o1.ingest.sentry.io/42"})

	files, err := svc.Generate("My App", domain.PlatformRender, env)
	require.NoError(t, err)

	snippet, ok := files["sentry_config.py"]
	require.True(t, ok)
	assert.Contains(t, snippet, `os.environ.get("SENTRY_DSN", "")`)
	assert.Contains(t, snippet, `release="my-app@1.0.0"`)
	assert.NotContains(t, snippet, "ingest.sentry.io")
}

func TestGenerate_RenderSecretHandling(t *testing.T) {
	svc := NewScaffoldService()
	files, err := svc.Generate("My App", domain.PlatformRender, scaffoldEnv)
	require.NoError(t, err)

	var cfg renderConfig
	require.NoError(t, yaml.Unmarshal([]byte(files["render.yaml"]), &cfg))
	require.Len(t, cfg.Services, 1)

	service := cfg.Services[0]
	assert.Equal(t, "my-app", service.Name)
	assert.Equal(t, "python", service.Env)

	byKey := make(map[string]renderEnvVar)
	for _, v := range service.EnvVars {
		byKey[v.Key] = v
	}

	// The session secret is generated platform-side, never written out.
	session := byKey["SESSION_SECRET"]
	assert.True(t, session.GenerateValue)
	assert.Empty(t, session.Value)

	// Other secrets are unsynced so the dashboard prompts for them.
	openai := byKey["OPENAI_API_KEY"]
	require.NotNil(t, openai.Sync)
	assert.False(t, *openai.Sync)
	assert.Empty(t, openai.Value)

	assert.Equal(t, "production", byKey["FLASK_ENV"].Value)

	assert.NotContains(t, files["render.yaml"], "sk-secret")
	assert.NotContains(t, files["render.yaml"], "deadbeef")
}

func TestGenerate_RailwayVariables(t *testing.T) {
	svc := NewScaffoldService()
	files, err := svc.Generate("My App", domain.PlatformRailway, scaffoldEnv)
	require.NoError(t, err)

	var cfg railwayConfig
	require.NoError(t, toml.Unmarshal([]byte(files["railway.toml"]), &cfg))

	assert.Equal(t, "nixpacks", cfg.Build.Builder)
	assert.Equal(t, "/", cfg.Deploy.HealthcheckPath)
	assert.Equal(t, 300, cfg.Deploy.HealthcheckTimeout)

	require.Len(t, cfg.Services, 1)
	vars := cfg.Services[0].Variables
	assert.Equal(t, "8080", vars["PORT"])
	assert.Equal(t, "production", vars["FLASK_ENV"])
	// Values reference platform variables, never the secret itself.
	assert.Equal(t, "${OPENAI_API_KEY}", vars["OPENAI_API_KEY"])
	assert.Equal(t, "${SESSION_SECRET}", vars["SESSION_SECRET"])
}

func TestGenerate_VercelEnvReferences(t *testing.T) {
	svc := NewScaffoldService()
	files, err := svc.Generate("My App", domain.PlatformVercel, scaffoldEnv)
	require.NoError(t, err)

	var cfg vercelConfig
	require.NoError(t, json.Unmarshal([]byte(files["vercel.json"]), &cfg))

	assert.Equal(t, 2, cfg.Version)
	assert.Equal(t, "my-app", cfg.Name)
	require.Len(t, cfg.Builds, 2)
	assert.Equal(t, "@vercel/python", cfg.Builds[0].Use)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Env["@openai_api_key"])
}

func TestWriteAll(t *testing.T) {
	svc := NewScaffoldService()
	dir := t.TempDir()

	written, err := svc.WriteAll(dir, "My App", domain.PlatformRender, scaffoldEnv)
	require.NoError(t, err)
	require.Len(t, written, 7)
	assert.True(t, sortedPaths(written))

	data, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "FROM python:3.10-slim")
}

func sortedPaths(paths []string) bool {
	for i := 1; i < len(paths); i++ {
		if paths[i-1] > paths[i] {
			return false
		}
	}
	return true
}
