package ingress

import (
	"bytes"
	"encoding/json"
	"io"
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

func newTestIngress(t *testing.T, rawCfg string) (*Ingress, *hctx.ModuleContext) {
	t.Helper()
	ing := New()
	var raw json.RawMessage
	if rawCfg != "" {
		raw = json.RawMessage(rawCfg)
	}
	mc := hctx.New("api_ingress", raw, nil, clienthub.New(), cancel.New(), zerolog.Nop())
	require.NoError(t, ing.Init(nil, mc))
	return ing, mc
}

// TestS6_HealthRespondsAndConnectionsRefusedAfterCancel implements spec.md
// §8 S6: bind_addr 127.0.0.1:0, GET /health returns 200 with "healthy"
// after Start, and new connections are refused after root cancel.
func TestS6_HealthRespondsAndConnectionsRefusedAfterCancel(t *testing.T) {
	ing, mc := newTestIngress(t, `{"bind_addr":"127.0.0.1:0"}`)

	router := chi.NewRouter()
	reg := openapi.NewRegistry("test", "0.0.1")
	router, err := ing.RegisterREST(mc, router, reg)
	require.NoError(t, err)
	ing.SetRouter(router, reg)

	root := cancel.New()
	ready := cancel.NewReadySignal()
	runDone := make(chan error, 1)
	go func() { runDone <- ing.Run(mc, root, ready) }()

	select {
	case <-ready.AwaitReady():
	case <-time.After(2 * time.Second):
		t.Fatal("ingress never became ready")
	}

	addr := ing.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthBody
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body.Status)

	root.Cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ingress did not shut down after cancel")
	}

	_, err = http.Get("http://" + addr + "/health")
	assert.Error(t, err, "connections should be refused once the listener is closed")
}

// TestRegisterREST_OpenAPIDocumentContainsHealthAndDocsPaths implements
// spec.md §8 S4's shape at the ingress level: the built-in operations
// appear in the OpenAPI snapshot under their paths and methods.
func TestRegisterREST_OpenAPIDocumentContainsHealthAndDocsPaths(t *testing.T) {
	ing, mc := newTestIngress(t, "")

	router := chi.NewRouter()
	reg := openapi.NewRegistry("test", "0.0.1")
	_, err := ing.RegisterREST(mc, router, reg)
	require.NoError(t, err)

	doc := reg.Snapshot()
	health, ok := doc.Paths["/health"]
	require.True(t, ok)
	_, ok = health["get"]
	assert.True(t, ok)

	_, ok = doc.Paths["/openapi.json"]
	assert.True(t, ok)
	_, ok = doc.Paths["/docs"]
	assert.True(t, ok, "docs enabled by default")
}

func TestRegisterREST_DocsOmittedWhenDisabled(t *testing.T) {
	ing, mc := newTestIngress(t, `{"enable_docs":false}`)

	router := chi.NewRouter()
	reg := openapi.NewRegistry("test", "0.0.1")
	_, err := ing.RegisterREST(mc, router, reg)
	require.NoError(t, err)

	doc := reg.Snapshot()
	_, ok := doc.Paths["/docs"]
	assert.False(t, ok)
}

func TestBuildHandler_AppliesBodySizeLimit(t *testing.T) {
	cfg := Config{MaxRequestSizeMB: 1, RequestTimeoutSecs: 5}
	router := chi.NewRouter()
	router.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := buildHandler(router, cfg)
	oversized := make([]byte, 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(oversized))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
