package backup

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// RegisterREST exposes POST /backup/run and GET /backup/status (spec.md
// SPEC_FULL.md §6 expansion).
func (m *Module) RegisterREST(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	router, err := m.registerRun(mc, router, reg)
	if err != nil {
		return nil, err
	}
	return m.registerStatus(router, reg)
}

func (m *Module) registerRun(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		go m.runOnce(context.Background(), mc)
		w.WriteHeader(http.StatusAccepted)
	}

	builder := openapi.NewOperation(http.MethodPost, "/backup/run").
		OperationID("backup.run").
		Summary("Trigger an out-of-band backup").
		Tag("backup").
		Handler(handler)
	ready := builder.JSONResponse(http.StatusAccepted, "backup triggered")
	return ready.Register(router, reg)
}

func (m *Module) registerStatus(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.StatusSnapshot())
	}

	builder := openapi.NewOperation(http.MethodGet, "/backup/status").
		OperationID("backup.status").
		Summary("Most recent backup run status").
		Tag("backup").
		Handler(handler)
	ready := openapi.JSONResponseWithSchema[Status](builder, reg, http.StatusOK, "status")
	return ready.Register(router, reg)
}
