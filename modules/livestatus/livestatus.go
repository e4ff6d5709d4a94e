// Package livestatus is an example REST+STATEFUL module (spec.md
// SPEC_FULL.md §2 C11): it resolves the process-wide lifecyclebus.Bus
// published by internal/orchestrator, keeps a short backlog of recent
// module lifecycle transitions, and bridges both the backlog and live
// events to any number of connected dashboards over GET /livestatus/stream
// (nhooyr.io/websocket).
package livestatus

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/lifecyclebus"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

func init() {
	registry.Register(module.Descriptor{
		Name:         "livestatus",
		Capabilities: module.NewSet(module.REST, module.Stateful),
		New:          func() (module.Instance, error) { return &Module{}, nil },
	})
}

const backlogSize = 50

// Module is the livestatus instance.
type Module struct {
	mu      sync.Mutex
	bus     *lifecyclebus.Bus
	backlog []lifecyclebus.Event
}

// Init resolves the lifecycle bus the orchestrator published before building
// the module graph (spec.md §4.3, §9). There is no fallback: a livestatus
// instance with nothing to bridge is a configuration error.
func (m *Module) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	bus, err := clienthub.Resolve[*lifecyclebus.Bus](mc.ClientHub(), clienthub.GlobalScope, lifecyclebus.InterfaceID)
	if err != nil {
		return fmt.Errorf("livestatus: resolving lifecycle bus: %w", err)
	}
	m.mu.Lock()
	m.bus = bus
	m.mu.Unlock()
	return nil
}

// Run subscribes to the lifecycle bus for the module's lifetime, appending
// every event to a bounded backlog so a dashboard connecting after the fact
// still sees the last backlogSize transitions (spec.md §4.4 phase 4 —
// STATEFUL entry point).
func (m *Module) Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error {
	m.mu.Lock()
	bus := m.bus
	m.mu.Unlock()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	ready.Notify()

	for {
		select {
		case <-token.Cancelled():
			return nil
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			m.record(evt)
		}
	}
}

func (m *Module) record(evt lifecyclebus.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backlog = append(m.backlog, evt)
	if len(m.backlog) > backlogSize {
		m.backlog = m.backlog[len(m.backlog)-backlogSize:]
	}
}

// snapshot returns a copy of the current backlog plus the bus to subscribe
// new dashboard connections on.
func (m *Module) snapshot() ([]lifecyclebus.Event, *lifecyclebus.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]lifecyclebus.Event(nil), m.backlog...), m.bus
}
