package sysmetrics

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// RegisterREST exposes GET /system/metrics (spec.md SPEC_FULL.md §6
// expansion).
func (m *Module) RegisterREST(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		snap := m.Latest()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(snap)
	}

	builder := openapi.NewOperation(http.MethodGet, "/system/metrics").
		OperationID("sysmetrics.read").
		Summary("Current system metrics snapshot").
		Tag("sysmetrics").
		Handler(handler)
	ready := openapi.JSONResponseWithSchema[Snapshot](builder, reg, http.StatusOK, "CPU/memory snapshot")
	return ready.Register(router, reg)
}
