package registry

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/module"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// orderRecorder records names in call order under a mutex, for assertions
// about phase sequencing across concurrent-looking goroutines.
type orderRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *orderRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *orderRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// recordingInitStop is a STATEFUL instance that records into initOrder on
// Init and into stopOrder when its Run observes cancellation.
type recordingInitStop struct {
	name      string
	initOrder *orderRecorder
	stopOrder *orderRecorder
}

func (m *recordingInitStop) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	m.initOrder.record(m.name)
	return nil
}

func (m *recordingInitStop) Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error {
	ready.Notify()
	<-token.Cancelled()
	m.stopOrder.record(m.name)
	return nil
}

func newRuntimeFor(t *testing.T, descs []module.Descriptor) (*Runtime, *Graph) {
	t.Helper()
	g, err := Build(descs)
	require.NoError(t, err)
	rt := NewRuntime(g, nil, nil, clienthub.New(), cancel.New(), zerolog.Nop())
	return rt, g
}

// TestS1_InitOrderAndStopOrderAreExactReverses implements spec.md §8 S1:
// three descriptors A, B, C with B depending on A and C depending on B.
func TestS1_InitOrderAndStopOrderAreExactReverses(t *testing.T) {
	initOrder := &orderRecorder{}
	stopOrder := &orderRecorder{}

	stateful := module.NewSet(module.Stateful)
	descs := []module.Descriptor{
		{Name: "C", Dependencies: []string{"B"}, Capabilities: stateful, New: func() (module.Instance, error) {
			return &recordingInitStop{name: "C", initOrder: initOrder, stopOrder: stopOrder}, nil
		}},
		{Name: "A", Capabilities: stateful, New: func() (module.Instance, error) {
			return &recordingInitStop{name: "A", initOrder: initOrder, stopOrder: stopOrder}, nil
		}},
		{Name: "B", Dependencies: []string{"A"}, Capabilities: stateful, New: func() (module.Instance, error) {
			return &recordingInitStop{name: "B", initOrder: initOrder, stopOrder: stopOrder}, nil
		}},
	}

	rt, _ := newRuntimeFor(t, descs)
	require.NoError(t, rt.Init(context.Background()))
	assert.Equal(t, []string{"A", "B", "C"}, initOrder.snapshot())

	root := cancel.New()
	require.NoError(t, rt.Start(root))

	root.Cancel()
	rt.Stop()

	assert.Equal(t, []string{"C", "B", "A"}, stopOrder.snapshot())
}

// publishingModule publishes an interface in Init; resolvingModule resolves
// it and records the pointer it got back.
type publishingModule struct {
	hub   *clienthub.Hub
	value *int
}

func (m *publishingModule) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	return clienthub.Publish(m.hub, clienthub.GlobalScope, "IFoo", m.value)
}

type resolvingModule struct {
	hub      *clienthub.Hub
	resolved **int
}

func (m *resolvingModule) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	v, err := clienthub.Resolve[*int](m.hub, clienthub.GlobalScope, "IFoo")
	if err != nil {
		return err
	}
	*m.resolved = v
	return nil
}

// TestS2_ResolveReturnsExactPublishedPointer implements spec.md §8 S2,
// as a registry-level smoke test of Init-order dependency enforcement
// (the client hub's own guarantees are covered in pkg/clienthub).
func TestS2_ResolveReturnsExactPublishedPointer(t *testing.T) {
	hub := clienthub.New()
	published := new(int)
	*published = 42
	var resolved *int

	descs := []module.Descriptor{
		{Name: "Y", Dependencies: []string{"X"}, Capabilities: module.NewSet(module.Core), New: func() (module.Instance, error) {
			return &resolvingModule{hub: hub, resolved: &resolved}, nil
		}},
		{Name: "X", Capabilities: module.NewSet(module.Core), New: func() (module.Instance, error) {
			return &publishingModule{hub: hub, value: published}, nil
		}},
	}

	g, err := Build(descs)
	require.NoError(t, err)
	rt := NewRuntime(g, nil, nil, hub, cancel.New(), zerolog.Nop())
	require.NoError(t, rt.Init(context.Background()))

	assert.Same(t, published, resolved)
}

// duplicateUsersModule registers GET /users unconditionally.
type duplicateUsersModule struct{}

func (duplicateUsersModule) RegisterREST(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	return openapi.NewOperation(http.MethodGet, "/users").
		OperationID("users.list").
		Handler(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }).
		JSONResponse(http.StatusOK, "ok").
		Register(router, reg)
}

// TestS3_DuplicateOperationFailsRESTPhase implements spec.md §8 S3: two
// descriptors both register GET /users; REST phase fails with
// DuplicateOperation.
func TestS3_DuplicateOperationFailsRESTPhase(t *testing.T) {
	host := module.Descriptor{Name: "ingress", Capabilities: module.NewSet(module.RESTHost), New: func() (module.Instance, error) {
		return struct{}{}, nil
	}}
	first := module.Descriptor{Name: "first", Capabilities: module.NewSet(module.REST), New: func() (module.Instance, error) {
		return duplicateUsersModule{}, nil
	}}
	second := module.Descriptor{Name: "second", Capabilities: module.NewSet(module.REST), New: func() (module.Instance, error) {
		return duplicateUsersModule{}, nil
	}}

	rt, _ := newRuntimeFor(t, []module.Descriptor{host, first, second})
	err := rt.RegisterREST("test", "0.0.1")
	require.Error(t, err)
	assert.ErrorIs(t, err, openapi.ErrDuplicateOperation)
}

// slowStatefulModule sleeps past its (shortened) stop timeout.
type slowStatefulModule struct{}

func (slowStatefulModule) Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error {
	ready.Notify()
	<-token.Cancelled()
	time.Sleep(3 * time.Second)
	return nil
}

func (slowStatefulModule) StopTimeout() (int, bool) { return 1, true }

// TestStop_TimeoutOnOneModuleDoesNotBlockStoppingTheRest verifies spec.md
// §8 S5's claim at the registry level: a timed-out stop still lets the
// remaining reverse-order stops proceed.
func TestStop_TimeoutOnOneModuleDoesNotBlockStoppingTheRest(t *testing.T) {
	stopOrder := &orderRecorder{}
	stateful := module.NewSet(module.Stateful)

	descs := []module.Descriptor{
		{Name: "slow", Capabilities: stateful, New: func() (module.Instance, error) { return slowStatefulModule{}, nil }},
		{Name: "fast", Dependencies: []string{"slow"}, Capabilities: stateful, New: func() (module.Instance, error) {
			return &recordingInitStop{name: "fast", initOrder: &orderRecorder{}, stopOrder: stopOrder}, nil
		}},
	}

	g, err := Build(descs)
	require.NoError(t, err)
	rt := NewRuntime(g, nil, nil, clienthub.New(), cancel.New(), zerolog.Nop())

	root := cancel.New()
	require.NoError(t, rt.Start(root))

	start := time.Now()
	root.Cancel()
	rt.Stop()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "stop should not block on the slow module's full 3s sleep")
	assert.Equal(t, []string{"fast"}, stopOrder.snapshot())
}
