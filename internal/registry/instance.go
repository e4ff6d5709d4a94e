// Package registry implements the module registry & lifecycle engine
// (spec.md §4.4, C4): collecting the link-time descriptors each module
// package deposits via Register, sorting them into a deterministic
// dependency order, and driving the five orchestration phases across
// whichever capability interfaces a module's Instance happens to implement.
package registry

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// Initializer is implemented by every module instance (spec.md §3: "every
// instance supports init(ctx) → result").
type Initializer interface {
	Init(ctx context.Context, mc *hctx.ModuleContext) error
}

// Migrator is implemented by DATABASE-capable instances.
type Migrator interface {
	Migrate(ctx context.Context, mc *hctx.ModuleContext, db *database.DB) error
}

// RESTRegistrar is implemented by REST-capable instances (and the
// REST_HOST instance, which instead receives the finalized router — see
// RESTHostReceiver).
type RESTRegistrar interface {
	RegisterREST(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error)
}

// RESTHostReceiver is implemented by the single REST_HOST instance. It
// receives the router and registry finalized at the end of the REST phase
// so its Start entry can serve them (spec.md §4.4 phase 3: "hand the
// finalized router to the REST_HOST module ... so it serves it on start").
type RESTHostReceiver interface {
	SetRouter(router chi.Router, reg *openapi.Registry)
}

// Runnable is implemented by STATEFUL instances. Its single entry method is
// the one spec.md §4.2 describes a module as opting into: the registry
// wraps it uniformly in a pkg/lifecycle.Wrapper rather than asking modules
// to hand-roll their own start/stop state machines, so a STATEFUL instance
// only has to know how to run until token is cancelled.
type Runnable interface {
	Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error
}

// AwaitReadyOptIn lets a STATEFUL instance choose whether its wrapper waits
// for Run to call ready.Notify() before entering Running (spec.md §4.2's
// await_ready). Instances that don't implement this are awaited: the wrapper
// does not enter Running until Notify. An instance whose AwaitReady returns
// false is treated as Running as soon as it is spawned.
type AwaitReadyOptIn interface {
	Runnable
	AwaitReady() bool
}

// StopTimeouter lets a STATEFUL instance override the default per-module
// stop timeout (spec.md §4.2 stop_timeout).
type StopTimeouter interface {
	StopTimeout() (seconds int, ok bool)
}

// Instances do not need to implement any interface to publish to the
// client hub — they just call hub.Publish during Init. module.Descriptor's
// ClientInterface field documents which interface a module exposes, purely
// for diagnostics.
