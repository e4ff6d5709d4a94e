package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "\n  connecting to " + m.apiURL + " ...\n"
	}
	t := defaultTheme

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewStatusBar(t),
		m.viewBody(t),
		m.viewFooter(t),
	)
}

func (m Model) viewStatusBar(t theme) string {
	bar := lipgloss.NewStyle().
		Width(m.width).
		Background(t.Surface).
		Foreground(t.Text).
		Padding(0, 1)

	dot := lipgloss.NewStyle().Foreground(t.Success).Render("●")
	status := "CONNECTED"
	if !m.connected {
		dot = lipgloss.NewStyle().Foreground(t.Error).Render("●")
		status = "DISCONNECTED"
	}
	if m.fromCache {
		status += " (cached)"
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("hyperspotctl")
	return bar.Render(fmt.Sprintf("%s  %s %s  %s", title, dot, status, m.apiURL))
}

func (m Model) viewBody(t theme) string {
	muted := lipgloss.NewStyle().Foreground(t.Muted)
	label := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)

	lines := []string{
		"",
		label.Render(fmt.Sprintf("%s v%s", m.doc.Info.Title, m.doc.Info.Version)),
		fmt.Sprintf("health status:   %s", valueOr(m.health.Status, "unknown")),
		fmt.Sprintf("modules known:   %d", len(m.doc.Tags())),
		fmt.Sprintf("routes known:    %d", m.doc.RouteCount()),
		fmt.Sprintf("last fetched:    %s", fetchedAtLabel(m)),
	}
	if m.lastErr != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(t.Error).Render("error: "+m.lastErr))
	}

	lines = append(lines, "", label.Render("modules"))
	for _, tag := range m.doc.Tags() {
		lines = append(lines, muted.Render("  - "+tag))
	}

	return strings.Join(lines, "\n")
}

func (m Model) viewFooter(t theme) string {
	bar := lipgloss.NewStyle().
		Width(m.width).
		Background(t.Surface).
		Foreground(t.Muted).
		Padding(0, 1)
	return bar.Render(fmt.Sprintf("r refresh now  -  q quit  -  polling every %s", pollInterval))
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func fetchedAtLabel(m Model) string {
	if m.fetchedAt.IsZero() {
		return "never"
	}
	return m.fetchedAt.Format("15:04:05")
}
