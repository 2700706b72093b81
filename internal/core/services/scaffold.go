package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// Ensure ScaffoldService implements the interface.
var _ driving.Scaffolder = (*ScaffoldService)(nil)

// ScaffoldService generates platform configuration files for a project.
// Every platform's files are generated regardless of the deploy target
// so the repository works on all of them.
type ScaffoldService struct{}

// NewScaffoldService creates a scaffold service.
func NewScaffoldService() *ScaffoldService {
	return &ScaffoldService{}
}

// renderConfig models render.yaml.
type renderConfig struct {
	Services []renderService `yaml:"services"`
}

type renderService struct {
	Type         string         `yaml:"type"`
	Name         string         `yaml:"name"`
	Env          string         `yaml:"env"`
	BuildCommand string         `yaml:"buildCommand"`
	StartCommand string         `yaml:"startCommand"`
	EnvVars      []renderEnvVar `yaml:"envVars"`
}

type renderEnvVar struct {
	Key           string `yaml:"key"`
	Value         string `yaml:"value,omitempty"`
	GenerateValue bool   `yaml:"generateValue,omitempty"`
	Sync          *bool  `yaml:"sync,omitempty"`
}

// railwayConfig models railway.toml.
type railwayConfig struct {
	Build    railwayBuild     `toml:"build"`
	Deploy   railwayDeploy    `toml:"deploy"`
	Services []railwayService `toml:"services"`
}

type railwayBuild struct {
	Builder string `toml:"builder"`
}

type railwayDeploy struct {
	HealthcheckPath    string `toml:"healthcheckPath"`
	HealthcheckTimeout int    `toml:"healthcheckTimeout"`
	RestartPolicyType  string `toml:"restartPolicyType"`
}

type railwayService struct {
	Name      string            `toml:"name"`
	Variables map[string]string `toml:"variables"`
}

// vercelConfig models vercel.json.
type vercelConfig struct {
	Version int               `json:"version"`
	Name    string            `json:"name"`
	Builds  []vercelBuild     `json:"builds"`
	Routes  []vercelRoute     `json:"routes"`
	Env     map[string]string `json:"env"`
}

type vercelBuild struct {
	Src string `json:"src"`
	Use string `json:"use"`
}

type vercelRoute struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

// Generate produces the full config file set for the application.
// Secret-valued env keys are never written in plaintext: the session
// secret is platform-generated and other secrets are marked unsynced
// so the platform prompts for them.
func (s *ScaffoldService) Generate(appName string, platform domain.Platform, env []domain.EnvVar) (map[string]string, error) {
	name := domain.SanitizeName(appName)

	files := make(map[string]string)

	renderYAML, err := s.renderYAML(name, env)
	if err != nil {
		return nil, fmt.Errorf("generating render.yaml: %w", err)
	}
	files["render.yaml"] = renderYAML

	railwayTOML, err := s.railwayTOML(name, env)
	if err != nil {
		return nil, fmt.Errorf("generating railway.toml: %w", err)
	}
	files["railway.toml"] = railwayTOML

	vercelJSON, err := s.vercelJSON(name, env)
	if err != nil {
		return nil, fmt.Errorf("generating vercel.json: %w", err)
	}
	files["vercel.json"] = vercelJSON

	appJSON, err := s.appJSON(appName, name, env)
	if err != nil {
		return nil, fmt.Errorf("generating app.json: %w", err)
	}
	files["app.json"] = appJSON

	files["Procfile"] = "web: gunicorn main:app --bind 0.0.0.0:$PORT\n"
	files["Dockerfile"] = dockerfile
	files["docker-compose.yml"] = s.dockerCompose(env)

	for _, v := range env {
		if v.Key == domain.CredSentryDSN {
			files["sentry_config.py"] = s.sentrySnippet(appName)
			break
		}
	}

	return files, nil
}

// sentrySnippet emits the error tracking bootstrap the application
// imports at startup. The DSN is read from the environment so the
// snippet can be committed.
func (s *ScaffoldService) sentrySnippet(appName string) string {
	return fmt.Sprintf(`import os

import sentry_sdk
from sentry_sdk.integrations.flask import FlaskIntegration

sentry_sdk.init(
    dsn=os.environ.get("SENTRY_DSN", ""),
    integrations=[FlaskIntegration()],
    traces_sample_rate=0.1,
    profiles_sample_rate=0.1,
    environment="production",
    release="%s@1.0.0",
)
`, domain.SanitizeName(appName))
}

// WriteAll generates the file set and writes it into dir. Returns the
// written paths in sorted order.
func (s *ScaffoldService) WriteAll(dir, appName string, platform domain.Platform, env []domain.EnvVar) ([]string, error) {
	files, err := s.Generate(appName, platform, env)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(files[name]), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		logger.Debug("scaffold: wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}

func (s *ScaffoldService) renderYAML(name string, env []domain.EnvVar) (string, error) {
	envVars := []renderEnvVar{{Key: "FLASK_ENV", Value: "production"}}
	noSync := false
	for _, v := range env {
		switch {
		case v.Key == domain.CredSessionSecret:
			envVars = append(envVars, renderEnvVar{Key: v.Key, GenerateValue: true})
		case domain.SecretEnvKeys[v.Key]:
			envVars = append(envVars, renderEnvVar{Key: v.Key, Sync: &noSync})
		default:
			envVars = append(envVars, renderEnvVar{Key: v.Key, Value: v.Value})
		}
	}

	cfg := renderConfig{Services: []renderService{{
		Type:         "web",
		Name:         name,
		Env:          "python",
		BuildCommand: "pip install -r requirements.txt",
		StartCommand: "gunicorn main:app --bind 0.0.0.0:$PORT",
		EnvVars:      envVars,
	}}}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *ScaffoldService) railwayTOML(name string, env []domain.EnvVar) (string, error) {
	variables := map[string]string{
		"PORT":      "8080",
		"FLASK_ENV": "production",
	}
	for _, v := range env {
		if v.Key == "PORT" || v.Key == "FLASK_ENV" {
			continue
		}
		// Secrets reference platform-side variables instead of values.
		variables[v.Key] = fmt.Sprintf("${%s}", v.Key)
	}

	cfg := railwayConfig{
		Build: railwayBuild{Builder: "nixpacks"},
		Deploy: railwayDeploy{
			HealthcheckPath:    "/",
			HealthcheckTimeout: 300,
			RestartPolicyType:  "on_failure",
		},
		Services: []railwayService{{Name: name, Variables: variables}},
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *ScaffoldService) vercelJSON(name string, env []domain.EnvVar) (string, error) {
	cfg := vercelConfig{
		Version: 2,
		Name:    name,
		Builds: []vercelBuild{
			{Src: "main.py", Use: "@vercel/python"},
			{Src: "static/**", Use: "@vercel/static"},
		},
		Routes: []vercelRoute{
			{Src: "/static/(.*)", Dest: "/static/$1"},
			{Src: "/(.*)", Dest: "/main.py"},
		},
		Env: make(map[string]string),
	}
	for _, v := range env {
		cfg.Env["@"+strings.ToLower(v.Key)] = v.Key
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

func (s *ScaffoldService) appJSON(appName, name string, env []domain.EnvVar) (string, error) {
	type envEntry struct {
		Description string `json:"description"`
		Value       string `json:"value,omitempty"`
		Required    bool   `json:"required,omitempty"`
	}

	envMap := map[string]envEntry{
		"FLASK_ENV": {Description: "Flask environment", Value: "production"},
	}
	for _, v := range env {
		if v.Key == "FLASK_ENV" {
			continue
		}
		envMap[v.Key] = envEntry{
			Description: fmt.Sprintf("Environment variable for %s", v.Key),
			Required:    true,
		}
	}

	cfg := map[string]any{
		"name":        name,
		"description": fmt.Sprintf("Autonomous SaaS deployment: %s", appName),
		"keywords":    []string{"python", "flask", "saas", "autonomous"},
		"env":         envMap,
		"formation": map[string]any{
			"web": map[string]any{"quantity": 1, "size": "free"},
		},
		"buildpacks": []map[string]string{{"url": "heroku/python"}},
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

const dockerfile = `FROM python:3.10-slim

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

ENV FLASK_ENV=production
ENV PYTHONPATH=/app

EXPOSE 8000

CMD ["gunicorn", "main:app", "--bind", "0.0.0.0:8000", "--workers", "2"]
`

func (s *ScaffoldService) dockerCompose(env []domain.EnvVar) string {
	var b strings.Builder
	b.WriteString("version: '3.8'\n\nservices:\n  web:\n    build: .\n    ports:\n      - \"8000:8000\"\n    environment:\n      - FLASK_ENV=production\n")
	for _, v := range env {
		if v.Key == "FLASK_ENV" {
			continue
		}
		fmt.Fprintf(&b, "      - %s=${%s}\n", v.Key, v.Key)
	}
	b.WriteString("    volumes:\n      - .:/app\n    restart: unless-stopped\n")
	return b.String()
}
