package ui

import "github.com/charmbracelet/lipgloss"

// theme is hyperspotctl's single color palette — one fixed theme rather
// than sentinel-tui-go's switchable set, since a single-operator ops
// dashboard has no use for the cosmetic variety a portfolio-viewing tool
// does.
type theme struct {
	Primary    lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
}

var defaultTheme = theme{
	Primary:    lipgloss.Color("#00d4ff"),
	Background: lipgloss.Color("#0d1117"),
	Surface:    lipgloss.Color("#161b22"),
	Success:    lipgloss.Color("#3fb950"),
	Error:      lipgloss.Color("#f85149"),
	Text:       lipgloss.Color("#c9d1d9"),
	Muted:      lipgloss.Color("#8b949e"),
}
