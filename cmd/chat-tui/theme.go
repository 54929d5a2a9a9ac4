package main

import "github.com/charmbracelet/lipgloss"

type uiTheme struct {
	header      lipgloss.Style
	title       lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	user        lipgloss.Style
	assistant   lipgloss.Style
	timestamp   lipgloss.Style
	pending     lipgloss.Style
	completed   lipgloss.Style
	failed      lipgloss.Style
	inputPanel  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	helpText    lipgloss.Style
}

func newTheme() uiTheme {
	green := lipgloss.Color("#a3e635")
	blue := lipgloss.Color("#38bdf8")
	amber := lipgloss.Color("#fbbf24")
	red := lipgloss.Color("#f87171")
	panelBg := lipgloss.Color("#0f172a")
	text := lipgloss.Color("#f1f5f9")
	muted := lipgloss.Color("#94a3b8")

	return uiTheme{
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1),
		title: lipgloss.NewStyle().Foreground(green).Bold(true),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(green).Bold(true),
		tabActive: lipgloss.NewStyle().
			Background(green).
			Foreground(lipgloss.Color("#052e16")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Background(lipgloss.Color("#1e293b")).
			Foreground(muted).
			Padding(0, 1),
		user:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(green).Bold(true),
		timestamp: lipgloss.NewStyle().Foreground(muted),
		pending:   lipgloss.NewStyle().Foreground(amber),
		completed: lipgloss.NewStyle().Foreground(green),
		failed:    lipgloss.NewStyle().Foreground(red),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1),
		footer:      lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		helpText:    lipgloss.NewStyle().Foreground(muted),
	}
}
