// Package ui holds the terminal styles shared by the CLI commands.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Header styles section titles in list and show output.
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	// ID styles entity identifiers.
	ID = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	// Success styles confirmation messages.
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// Warning styles validation findings and soft failures.
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	// Error styles fatal error messages.
	Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// Muted styles secondary detail such as timestamps and counts.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[string]lipgloss.Style{
		"planning":    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		"todo":        lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		"upcoming":    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		"in-progress": lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"active":      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"done":        lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"completed":   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"missed":      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}

	priorityStyles = map[string]lipgloss.Style{
		"critical": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		"high":     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		"low":      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

// Status renders a status value in its conventional color.
func Status(s string) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(s)
	}
	return s
}

// Priority renders a priority value in its conventional color.
func Priority(p string) string {
	if style, ok := priorityStyles[p]; ok {
		return style.Render(p)
	}
	return p
}
