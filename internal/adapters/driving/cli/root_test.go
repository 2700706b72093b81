package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/shipforge-labs/shipforge-cli/internal/adapters/driven/storage/memory"
	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/core/services"
)

// fakeOrchestrator records its inputs and plays back a canned record.
type fakeOrchestrator struct {
	deployment *domain.Deployment
	err        error
	gotReq     driving.DeployRequest
	status     string
	platforms  []domain.Platform
}

func (f *fakeOrchestrator) Deploy(_ context.Context, req driving.DeployRequest) (*domain.Deployment, error) {
	f.gotReq = req
	if req.Progress != nil {
		for _, step := range f.deployment.Steps {
			req.Progress(step)
		}
	}
	return f.deployment, f.err
}

func (f *fakeOrchestrator) Status(context.Context, domain.Platform, string) (string, error) {
	return f.status, f.err
}

func (f *fakeOrchestrator) Platforms() []domain.Platform {
	return f.platforms
}

type fakeCLIVerifier struct {
	report *domain.VerificationReport
	err    error
}

func (f *fakeCLIVerifier) Verify(context.Context, string) (*domain.VerificationReport, error) {
	return f.report, f.err
}

type mapCredStore struct {
	values map[string]string
}

func (m *mapCredStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *mapCredStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *mapCredStore) All(context.Context) (domain.Credentials, error) {
	out := make(domain.Credentials)
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *mapCredStore) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func goodDeployment() *domain.Deployment {
	return &domain.Deployment{
		ID:       "dep-1",
		AppName:  "app",
		Platform: domain.PlatformRender,
		Steps: []domain.StepResult{
			{Name: domain.StepValidateFiles, Status: domain.StepOK},
			{Name: domain.StepDeploy, Status: domain.StepOK, Detail: "https://app.onrender.com"},
			{Name: domain.StepVerify, Status: domain.StepOK},
		},
		URLs: domain.DeploymentURLs{
			Repository: "https://github.com/octocat/app",
			LiveSite:   "https://app.onrender.com",
		},
	}
}

// setupTestServices wires fakes and returns a cleanup that restores the
// previous wiring.
func setupTestServices(orch *fakeOrchestrator) func() {
	prev := Services{
		Deployer:    deployOrchestrator,
		Verifier:    verifier,
		Scaffolder:  scaffolder,
		Watcher:     watcher,
		Announcer:   announcer,
		Email:       emailService,
		Incidents:   incidentManager,
		Credentials: credentialsService,
		History:     historyStore,
	}
	SetServices(Services{
		Deployer:    orch,
		Verifier:    &fakeCLIVerifier{report: &domain.VerificationReport{}},
		Scaffolder:  services.NewScaffoldService(),
		Credentials: services.NewCredentialsService(&mapCredStore{values: map[string]string{}}),
		History:     memory.NewDeploymentStore(),
	})
	return func() { SetServices(prev) }
}

// resetDeployFlags restores the deploy command flags to their defaults.
// Flag variables are package state and survive across executions.
func resetDeployFlags() {
	deployName = ""
	deployPlatform = "render"
	deployPrivate = false
	deployNoVerify = false
	deployJSON = false
	deployPlain = false
}

// execute runs the root command with args, capturing output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
