package registry

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hyperspotdev/hyperspot/internal/config"
	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/lifecycle"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// Runtime holds a built Graph plus everything the five phase functions need
// to execute it once: one ModuleContext per module, one lifecycle.Wrapper
// per STATEFUL module, and the shared collaborators every ModuleContext is
// a view over.
type Runtime struct {
	graph *Graph
	cfg   *config.Config
	db    *database.DB
	hub   *clienthub.Hub
	root  cancel.Token
	log   zerolog.Logger

	contexts map[string]*hctx.ModuleContext
	wrappers map[string]*lifecycle.Wrapper

	router     chi.Router
	openapiReg *openapi.Registry
}

// NewRuntime builds a ModuleContext for every module in graph, scoped to
// its modules.<name> raw config section (absent if cfg is nil or the
// section is unset), the shared db (nil if unconfigured), hub, and a child
// of root.
func NewRuntime(graph *Graph, cfg *config.Config, db *database.DB, hub *clienthub.Hub, root cancel.Token, log zerolog.Logger) *Runtime {
	rt := &Runtime{
		graph:    graph,
		cfg:      cfg,
		db:       db,
		hub:      hub,
		root:     root,
		log:      log,
		contexts: make(map[string]*hctx.ModuleContext, len(graph.order)),
		wrappers: make(map[string]*lifecycle.Wrapper),
	}
	for _, n := range graph.order {
		var raw []byte
		if cfg != nil {
			raw = cfg.Modules[n.desc.Name]
		}
		rt.contexts[n.desc.Name] = hctx.New(n.desc.Name, raw, db, hub, root, log)
	}
	return rt
}

// Names returns the modules in dependency (init) order.
func (rt *Runtime) Names() []string {
	return rt.graph.Names()
}

// Router returns the router finalized by the REST phase, or nil before it
// has run.
func (rt *Runtime) Router() chi.Router {
	return rt.router
}

// OpenAPIRegistry returns the registry finalized by the REST phase, or nil
// before it has run.
func (rt *Runtime) OpenAPIRegistry() *openapi.Registry {
	return rt.openapiReg
}
