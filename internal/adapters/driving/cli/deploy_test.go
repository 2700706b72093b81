package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

func TestDeployCmd_PlainOutput(t *testing.T) {
	orch := &fakeOrchestrator{deployment: goodDeployment()}
	cleanup := setupTestServices(orch)
	defer cleanup()
	defer resetDeployFlags()

	out, err := execute(t, "deploy", t.TempDir(), "--plain", "--name", "app")
	require.NoError(t, err)

	assert.Equal(t, "app", orch.gotReq.AppName)
	assert.Equal(t, domain.PlatformRender, orch.gotReq.Platform)
	assert.Contains(t, out, "+ validate files")
	assert.Contains(t, out, "+ deploy: https://app.onrender.com")
	assert.Contains(t, out, "Deployment of app succeeded.")
	assert.Contains(t, out, "Live site:  https://app.onrender.com")
}

func TestDeployCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{deployment: goodDeployment()})
	defer cleanup()
	defer resetDeployFlags()

	out, err := execute(t, "deploy", t.TempDir(), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "dep-1"`)
	assert.Contains(t, out, `"app_name": "app"`)
}

func TestDeployCmd_FailedDeploymentIsAnError(t *testing.T) {
	d := goodDeployment()
	d.Steps[1].Status = domain.StepFailed
	d.Errors = []string{"deployment to render failed"}
	cleanup := setupTestServices(&fakeOrchestrator{deployment: d})
	defer cleanup()
	defer resetDeployFlags()

	out, err := execute(t, "deploy", t.TempDir(), "--plain")
	require.Error(t, err)
	assert.Contains(t, out, "Deployment of app failed.")
	assert.Contains(t, out, "deployment to render failed")
}

func TestDeployCmd_FlagsForwarded(t *testing.T) {
	orch := &fakeOrchestrator{deployment: goodDeployment()}
	cleanup := setupTestServices(orch)
	defer cleanup()
	defer resetDeployFlags()

	_, err := execute(t, "deploy", t.TempDir(), "--plain",
		"--platform", "railway", "--private", "--no-verify")
	require.NoError(t, err)

	assert.Equal(t, domain.PlatformRailway, orch.gotReq.Platform)
	assert.True(t, orch.gotReq.PrivateRepo)
	assert.True(t, orch.gotReq.SkipVerify)
}

func TestDeployCmd_UnknownPlatform(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{deployment: goodDeployment()})
	defer cleanup()
	defer resetDeployFlags()

	_, err := execute(t, "deploy", t.TempDir(), "--plain", "--platform", "heroku")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeployCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{deployment: goodDeployment()})
	SetServices(Services{})
	defer cleanup()
	defer resetDeployFlags()

	_, err := execute(t, "deploy", t.TempDir(), "--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestPlatformsCmd(t *testing.T) {
	orch := &fakeOrchestrator{platforms: []domain.Platform{domain.PlatformRender, domain.PlatformVercel}}
	cleanup := setupTestServices(orch)
	defer cleanup()

	out, err := execute(t, "platforms")
	require.NoError(t, err)
	assert.Contains(t, out, "render")
	assert.Contains(t, out, "vercel")
}

func TestStatusCmd(t *testing.T) {
	orch := &fakeOrchestrator{status: "live"}
	cleanup := setupTestServices(orch)
	defer cleanup()

	out, err := execute(t, "status", "render", "srv-1")
	require.NoError(t, err)
	assert.Contains(t, out, "live")
}
