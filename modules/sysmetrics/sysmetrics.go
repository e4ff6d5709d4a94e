// Package sysmetrics is an example CORE+REST+STATEFUL module (spec.md
// SPEC_FULL.md §2 C11): it periodically samples host CPU and memory
// utilization with gopsutil, keeps a rolling window summarized with
// gonum/stat, exposes the result over GET /system/metrics, and publishes a
// Reader client interface other modules can resolve without
// importing this package directly.
package sysmetrics

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"gonum.org/v1/gonum/stat"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

func init() {
	registry.Register(module.Descriptor{
		Name:            "sysmetrics",
		Capabilities:    module.NewSet(module.Core, module.REST, module.Stateful),
		New:             func() (module.Instance, error) { return &Module{}, nil },
		ClientInterface: string(clientInterfaceID),
	})
}

// Module is the sysmetrics instance.
type Module struct {
	mu     sync.Mutex
	cfg    Config
	cpuW   window
	memW   window
	latest Snapshot
	hub    *clienthub.Hub
}

func (m *Module) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	cfg, err := hctx.ModuleConfig[Config](mc)
	if err != nil {
		return err
	}
	cfg.applyDefaults()

	m.mu.Lock()
	m.cfg = cfg
	m.hub = mc.ClientHub()
	m.cpuW = newWindow(cfg.WindowSize)
	m.memW = newWindow(cfg.WindowSize)
	m.mu.Unlock()

	return clienthub.Publish[Reader](mc.ClientHub(), clienthub.GlobalScope, clientInterfaceID, m)
}

// Run samples at sample_interval_secs until token is cancelled (spec.md
// §4.4 phase 4 — STATEFUL entry point).
func (m *Module) Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error {
	m.mu.Lock()
	interval := time.Duration(m.cfg.SampleIntervalSecs) * time.Second
	m.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	m.sample(mc)
	ready.Notify()

	for {
		select {
		case <-token.Cancelled():
			return nil
		case <-ticker.C:
			m.sample(mc)
		}
	}
}

func (m *Module) sample(mc *hctx.ModuleContext) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		mc.Log().Warn().Err(err).Msg("sysmetrics: cpu sample failed")
		return
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		mc.Log().Warn().Err(err).Msg("sysmetrics: memory sample failed")
		return
	}

	var cpuPct float64
	if len(percents) > 0 {
		cpuPct = percents[0]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpuW.push(cpuPct)
	m.memW.push(vm.UsedPercent)

	m.latest = Snapshot{
		CPUPercent:       cpuPct,
		CPUPercentMean:   stat.Mean(m.cpuW.values(), nil),
		CPUPercentStdDev: stddev(m.cpuW.values()),
		MemPercent:       vm.UsedPercent,
		MemPercentMean:   stat.Mean(m.memW.values(), nil),
		MemPercentStdDev: stddev(m.memW.values()),
		SampledAt:        time.Now().UTC(),
	}
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Latest implements Reader: the client-hub-published read accessor.
func (m *Module) Latest() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

// window is a fixed-capacity ring buffer of float64 samples.
type window struct {
	data []float64
	cap  int
}

func newWindow(capacity int) window {
	if capacity <= 0 {
		capacity = 1
	}
	return window{cap: capacity}
}

func (w *window) push(v float64) {
	w.data = append(w.data, v)
	if len(w.data) > w.cap {
		w.data = w.data[len(w.data)-w.cap:]
	}
}

func (w *window) values() []float64 {
	return w.data
}
