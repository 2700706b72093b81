package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
)

func advance(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_InitStartsSpinner(t *testing.T) {
	m := NewModel("app", domain.PlatformRender)
	assert.NotNil(t, m.Init())
}

func TestModel_AppendsSteps(t *testing.T) {
	m := NewModel("app", domain.PlatformRender)

	m, _ = advance(t, m, stepMsg{Name: domain.StepValidateFiles, Status: domain.StepOK})
	m, _ = advance(t, m, stepMsg{Name: domain.StepDeploy, Status: domain.StepFailed, Err: "build failed"})

	require.Len(t, m.steps, 2)
	view := m.View()
	assert.Contains(t, view, "validate files")
	assert.Contains(t, view, "x deploy")
	assert.Contains(t, view, "build failed")
}

func TestModel_DoneQuits(t *testing.T) {
	m := NewModel("app", domain.PlatformRailway)
	d := &domain.Deployment{
		AppName: "app",
		Steps: []domain.StepResult{
			{Name: domain.StepDeploy, Status: domain.StepOK},
			{Name: domain.StepVerify, Status: domain.StepOK},
		},
	}

	m, cmd := advance(t, m, doneMsg{deployment: d})

	assert.True(t, m.done)
	assert.Equal(t, d, m.Deployment())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Contains(t, m.View(), "Deployment succeeded")
}

func TestModel_FailureShownInView(t *testing.T) {
	m := NewModel("app", domain.PlatformRender)
	d := &domain.Deployment{
		AppName: "app",
		Steps:   []domain.StepResult{{Name: domain.StepDeploy, Status: domain.StepFailed}},
	}

	m, _ = advance(t, m, doneMsg{deployment: d})
	assert.Contains(t, m.View(), "Deployment failed")
}

func TestModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		m := NewModel("app", domain.PlatformRender)
		var msg tea.KeyMsg
		if key == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}

		m, cmd := advance(t, m, msg)
		assert.True(t, m.cancelled, key)
		require.NotNil(t, cmd, key)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestModel_SpinnerShownUntilDone(t *testing.T) {
	m := NewModel("app", domain.PlatformRender)
	assert.Contains(t, m.View(), "working...")

	m, _ = advance(t, m, doneMsg{deployment: &domain.Deployment{}})
	assert.NotContains(t, m.View(), "working...")
}
