package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperspotdev/hyperspot/internal/config"
	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

// statefulProbe is a STATEFUL instance that signals startedCh once running
// and stoppedCh once it observes cancellation, letting the test assert the
// full phase sequence without reaching into registry internals.
type statefulProbe struct {
	startedCh chan struct{}
	stoppedCh chan struct{}
}

func (p *statefulProbe) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	return nil
}

func (p *statefulProbe) Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error {
	ready.Notify()
	close(p.startedCh)
	<-token.Cancelled()
	close(p.stoppedCh)
	return nil
}

// withRegistrations swaps the package-level registry.Registrations slice for
// the duration of a test and restores it afterward — the slice is link-time
// global state that every module's init() appends to, so tests must not
// leak their fixtures into each other.
func withRegistrations(t *testing.T, descs []module.Descriptor) {
	t.Helper()
	orig := registry.Registrations
	registry.Registrations = descs
	t.Cleanup(func() { registry.Registrations = orig })
}

// TestRun_FullLifecycleStartsAndStopsOnShutdownSignal exercises Run
// end-to-end: Init, Start, a signaled shutdown, then Stop, returning 0.
func TestRun_FullLifecycleStartsAndStopsOnShutdownSignal(t *testing.T) {
	probe := &statefulProbe{startedCh: make(chan struct{}), stoppedCh: make(chan struct{})}
	desc := module.Descriptor{
		Name:         "probe",
		Capabilities: module.NewSet(module.Core, module.Stateful),
		New:          func() (module.Instance, error) { return probe, nil },
	}
	withRegistrations(t, []module.Descriptor{desc})

	shutdown := make(chan struct{})
	done := make(chan int, 1)
	go func() {
		done <- Run(Options{
			ConfigOptions: config.Options{ConfigPath: "/nonexistent/config.json", EnvFile: "/nonexistent/.env"},
			Title:         "test", Version: "0.0.1",
			SkipDatabase: true,
			Shutdown:     shutdown,
		})
	}()

	select {
	case <-probe.startedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("module never started")
	}

	close(shutdown)

	select {
	case <-probe.stoppedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("module never observed cancellation")
	}

	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(2 * time.Second):
		t.Fatal("Run never returned")
	}
}

// TestRun_DescriptorConflictIsFatal verifies that a Build failure (here, two
// descriptors with the same name) makes Run return a non-zero exit code
// without blocking.
func TestRun_DescriptorConflictIsFatal(t *testing.T) {
	dup := module.Descriptor{Name: "dup", Capabilities: module.NewSet(module.Core), New: func() (module.Instance, error) { return struct{}{}, nil }}
	withRegistrations(t, []module.Descriptor{dup, dup})

	shutdown := make(chan struct{})
	code := Run(Options{
		ConfigOptions: config.Options{ConfigPath: "/nonexistent/config.json", EnvFile: "/nonexistent/.env"},
		SkipDatabase:  true,
		Shutdown:      shutdown,
	})
	require.Equal(t, 1, code)
}
