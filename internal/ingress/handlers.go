package ingress

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// healthBody is the bit-exact /health response shape (spec.md §6).
type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func registerHealth(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		body := healthBody{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339)}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}

	return openapi.NewOperation(http.MethodGet, "/health").
		OperationID("ingress.health").
		Summary("Liveness check").
		Tag("ingress").
		Handler(handler).
		JSONResponse(http.StatusOK, "service is healthy").
		Register(router, reg)
}

func registerOpenAPIDocument(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		doc := reg.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(doc)
	}

	return openapi.NewOperation(http.MethodGet, "/openapi.json").
		OperationID("ingress.openapi_document").
		Summary("OpenAPI document").
		Tag("ingress").
		Handler(handler).
		JSONResponse(http.StatusOK, "OpenAPI 3.x document").
		Register(router, reg)
}

const docsPageTemplate = `<!DOCTYPE html>
<html>
<head><title>HyperSpot API docs</title></head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => SwaggerUIBundle({ url: "/openapi.json", dom_id: "#swagger-ui" });
</script>
</body>
</html>`

func registerDocsPage(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(docsPageTemplate))
	}

	return openapi.NewOperation(http.MethodGet, "/docs").
		OperationID("ingress.docs").
		Summary("Interactive API documentation").
		Tag("ingress").
		Handler(handler).
		JSONResponse(http.StatusOK, "HTML documentation page").
		Register(router, reg)
}
