package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperspotdev/hyperspot/cmd/hyperspotctl/internal/api"
)

const pollInterval = 3 * time.Second

// Model is hyperspotctl's bubbletea model: a read-only poller over one
// hyperspotd instance's /health and /openapi.json, following
// sentinel-tui-go's model shape (a thin struct of client + last-fetched
// data + UI state, updated by typed fetch-result messages) (spec.md
// SPEC_FULL.md §2 expansion).
type Model struct {
	client *api.Client
	apiURL string

	connected bool
	fromCache bool
	health    api.Health
	doc       api.Document
	lastErr   string
	fetchedAt time.Time

	width, height int
	ready         bool
}

type healthMsg struct {
	health api.Health
	err    error
}

type docMsg struct {
	doc api.Document
	err error
}

type tickMsg time.Time

// NewModel constructs a Model for apiURL, seeded with the last cached
// snapshot (if any) so something renders before the first poll completes.
func NewModel(client *api.Client, apiURL string) Model {
	m := Model{client: client, apiURL: apiURL}
	if snap, ok := api.LoadCachedSnapshot(); ok {
		m.health = snap.Health
		m.doc = snap.Document
		m.fetchedAt = snap.FetchedAt
		m.fromCache = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchHealth(m.client), fetchDocument(m.client), tickCmd())
}

func fetchHealth(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h, err := c.FetchHealth(ctx)
		return healthMsg{h, err}
	}
}

func fetchDocument(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		doc, err := c.FetchOpenAPIDocument(ctx)
		return docMsg{doc, err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
