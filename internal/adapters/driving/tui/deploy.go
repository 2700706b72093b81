// Package tui renders live pipeline progress with Bubbletea. One view:
// the deploy progress list, a step per line, spinner on the stage in
// flight.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
)

// stepMsg delivers a completed pipeline step to the model.
type stepMsg domain.StepResult

// doneMsg delivers the final deployment record.
type doneMsg struct {
	deployment *domain.Deployment
	err        error
}

// Model is the deploy progress view, following the Elm architecture.
type Model struct {
	appName  string
	platform domain.Platform
	styles   Styles
	spinner  spinner.Model

	steps      []domain.StepResult
	deployment *domain.Deployment
	err        error
	done       bool
	cancelled  bool
}

// NewModel creates a deploy progress model.
func NewModel(appName string, platform domain.Platform) Model {
	styles := DefaultStyles()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner))
	return Model{
		appName:  appName,
		platform: platform,
		styles:   styles,
		spinner:  sp,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles step progress, completion, and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil

	case stepMsg:
		m.steps = append(m.steps, domain.StepResult(msg))
		return m, nil

	case doneMsg:
		m.done = true
		m.deployment = msg.deployment
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the step list.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Deploying %s to %s", m.appName, m.platform)))
	b.WriteString("\n\n")

	for _, step := range m.steps {
		b.WriteString("  ")
		b.WriteString(m.renderStep(step))
		b.WriteString("\n")
	}

	if !m.done {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Detail.Render("working..."))
		b.WriteString("\n")
	} else if m.deployment != nil {
		b.WriteString("\n")
		if m.deployment.Succeeded() {
			b.WriteString(m.styles.Success.Render("Deployment succeeded"))
		} else {
			b.WriteString(m.styles.Error.Render("Deployment failed"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStep(step domain.StepResult) string {
	label := strings.ReplaceAll(step.Name, "_", " ")
	var line string
	switch step.Status {
	case domain.StepOK:
		line = m.styles.Success.Render("+ " + label)
	case domain.StepFailed:
		line = m.styles.Error.Render("x " + label)
		if step.Err != "" {
			line += m.styles.Detail.Render(" " + step.Err)
		}
	case domain.StepSkipped:
		line = m.styles.Skipped.Render("- " + label)
	default:
		line = m.styles.Step.Render("* " + label)
	}
	if step.Detail != "" && step.Status != domain.StepFailed {
		line += m.styles.Detail.Render(" " + step.Detail)
	}
	return line
}

// Deployment returns the final record once the run completes.
func (m Model) Deployment() *domain.Deployment {
	return m.deployment
}

// RunDeploy drives the pipeline under the progress view and returns the
// deployment record.
func RunDeploy(ctx context.Context, orchestrator driving.DeployOrchestrator, req driving.DeployRequest) (*domain.Deployment, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(appNameOrPath(req), req.Platform))

	req.Progress = func(step domain.StepResult) {
		program.Send(stepMsg(step))
	}
	go func() {
		d, err := orchestrator.Deploy(ctx, req)
		program.Send(doneMsg{deployment: d, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running deploy view: %w", err)
	}
	model := final.(Model)
	if model.cancelled {
		cancel()
		return model.deployment, context.Canceled
	}
	return model.deployment, model.err
}

func appNameOrPath(req driving.DeployRequest) string {
	if req.AppName != "" {
		return req.AppName
	}
	return req.Path
}
