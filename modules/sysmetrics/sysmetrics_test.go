package sysmetrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

func newTestModule(t *testing.T, rawCfg string) (*Module, *hctx.ModuleContext) {
	t.Helper()
	m := &Module{}
	hub := clienthub.New()
	var raw json.RawMessage
	if rawCfg != "" {
		raw = json.RawMessage(rawCfg)
	}
	mc := hctx.New("sysmetrics", raw, nil, hub, cancel.New(), zerolog.Nop())
	require.NoError(t, m.Init(context.Background(), mc))
	return m, mc
}

func TestInit_PublishesReaderInterface(t *testing.T) {
	m, mc := newTestModule(t, "")
	reader, err := clienthub.Resolve[Reader](mc.ClientHub(), clienthub.GlobalScope, clientInterfaceID)
	require.NoError(t, err)
	assert.Same(t, m, reader)
}

func TestRun_SamplesUntilCancelled(t *testing.T) {
	m, mc := newTestModule(t, `{"sample_interval_secs":1,"window_size":5}`)

	root := cancel.New()
	ready := cancel.NewReadySignal()
	done := make(chan error, 1)
	go func() { done <- m.Run(mc, root, ready) }()

	select {
	case <-ready.AwaitReady():
	case <-time.After(time.Second):
		t.Fatal("run never signaled ready")
	}

	snap := m.Latest()
	assert.False(t, snap.SampledAt.IsZero(), "expected an immediate sample on start")

	root.Cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRegisterREST_ServesLatestSnapshot(t *testing.T) {
	m, mc := newTestModule(t, "")
	m.sample(mc)

	router := chi.NewRouter()
	reg := openapi.NewRegistry("test", "0.0.1")
	router, err := m.RegisterREST(mc, router, reg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/system/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.False(t, snap.SampledAt.IsZero())

	doc := reg.Snapshot()
	_, ok := doc.Paths["/system/metrics"]["get"]
	assert.True(t, ok)
}
