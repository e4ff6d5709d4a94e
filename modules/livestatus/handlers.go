package livestatus

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/lifecyclebus"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// RegisterREST exposes GET /livestatus/stream (spec.md SPEC_FULL.md §6
// expansion): a WebSocket that first replays the backlog of recent module
// lifecycle transitions, then forwards every new one as it is emitted,
// until the client disconnects or the server stops.
func (m *Module) RegisterREST(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			mc.Log().Debug().Err(err).Msg("livestatus: websocket accept failed")
			return
		}
		defer conn.CloseNow()

		backlog, bus := m.snapshot()
		ctx := r.Context()

		for _, evt := range backlog {
			if !writeEvent(ctx, conn, evt) {
				return
			}
		}

		ch, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
				return
			case evt, ok := <-ch:
				if !ok {
					_ = conn.Close(websocket.StatusNormalClosure, "lifecycle bus closed")
					return
				}
				if !writeEvent(ctx, conn, evt) {
					return
				}
			}
		}
	}

	builder := openapi.NewOperation(http.MethodGet, "/livestatus/stream").
		OperationID("livestatus.stream").
		Summary("WebSocket stream of module lifecycle transitions").
		Tag("livestatus").
		Handler(handler)
	ready := builder.JSONResponse(http.StatusSwitchingProtocols, "Upgraded to a WebSocket carrying one JSON lifecycle event per text message")
	return ready.Register(router, reg)
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt lifecyclebus.Event) bool {
	data, err := json.Marshal(evt)
	if err != nil {
		return false
	}
	return conn.Write(ctx, websocket.MessageText, data) == nil
}
