package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the deploy view.
type Styles struct {
	Title   lipgloss.Style
	Step    lipgloss.Style
	Detail  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Skipped lipgloss.Style
	Spinner lipgloss.Style
}

// DefaultStyles returns the default deploy view styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Step:    lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
		Detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
	}
}
