package tui

import "github.com/charmbracelet/lipgloss"

// styles groups the lipgloss styles used by the screen.
type styles struct {
	title     lipgloss.Style
	prompt    lipgloss.Style
	selected  lipgloss.Style
	normal    lipgloss.Style
	muted     lipgloss.Style
	date      lipgloss.Style
	count     lipgloss.Style
	errorText lipgloss.Style
	status    lipgloss.Style
	help      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
		prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),
		selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		date: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		count: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),
		errorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
	}
}
