package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperspotdev/hyperspot/cmd/hyperspotctl/internal/api"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			return m, tea.Batch(fetchHealth(m.client), fetchDocument(m.client))
		}

	case healthMsg:
		if msg.err != nil {
			m.connected = false
			m.lastErr = msg.err.Error()
		} else {
			m.connected = true
			m.lastErr = ""
			m.health = msg.health
			m.fromCache = false
			m.fetchedAt = time.Now()
		}

	case docMsg:
		if msg.err != nil {
			m.connected = false
			m.lastErr = msg.err.Error()
		} else {
			m.doc = msg.doc
			m.fromCache = false
			m.fetchedAt = time.Now()
			_ = api.SaveSnapshotCache(api.Snapshot{
				FetchedAt: m.fetchedAt,
				Health:    m.health,
				Document:  m.doc,
			})
		}

	case tickMsg:
		return m, tea.Batch(fetchHealth(m.client), fetchDocument(m.client), tickCmd())
	}

	return m, nil
}
