// Command hyperspotctl is a read-only terminal dashboard for a running
// hyperspotd instance (spec.md SPEC_FULL.md §2 expansion). It polls
// GET /health and GET /openapi.json and renders live module/route counts,
// caching the last successful snapshot so it has something to show
// immediately on the next launch. It is a client of the runtime, not part
// of it — it never touches the in-process module registry, following the
// same separation sentinel-tui-go draws from its own server process.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperspotdev/hyperspot/cmd/hyperspotctl/internal/api"
	"github.com/hyperspotdev/hyperspot/cmd/hyperspotctl/internal/ui"
)

func main() {
	apiURL := flag.String("api-url", "http://127.0.0.1:8087", "hyperspotd base URL")
	flag.Parse()

	client := api.NewClient(*apiURL)
	m := ui.NewModel(client, *apiURL)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "hyperspotctl: %v\n", err)
		os.Exit(1)
	}
}
