package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/lifecycle"
	"github.com/hyperspotdev/hyperspot/pkg/lifecyclebus"
	"github.com/hyperspotdev/hyperspot/pkg/module"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
)

// emit resolves the lifecycle bus published under lifecyclebus.InterfaceID
// from rt.hub and publishes evt to it; a no-op if nothing was published
// (e.g. a Runtime built over a hub the orchestrator did not populate).
func (rt *Runtime) emit(eventType lifecyclebus.EventType, moduleName string) {
	if rt.hub == nil {
		return
	}
	bus, err := clienthub.Resolve[*lifecyclebus.Bus](rt.hub, clienthub.GlobalScope, lifecyclebus.InterfaceID)
	if err != nil {
		return
	}
	bus.Emit(lifecyclebus.Event{Type: eventType, Module: moduleName, Timestamp: time.Now().UTC()})
}

const defaultStopTimeout = 30 * time.Second

// Init walks the dependency-sorted module list and calls Init on every
// instance that implements Initializer (spec.md §4.4 phase 1). A failure
// aborts the remaining modules; the caller is expected to treat it as fatal
// for the whole orchestration.
func (rt *Runtime) Init(ctx context.Context) error {
	for _, n := range rt.graph.order {
		init, ok := n.instance.(Initializer)
		if !ok {
			continue
		}
		if err := init.Init(ctx, rt.contexts[n.desc.Name]); err != nil {
			return fmt.Errorf("init %q: %w", n.desc.Name, err)
		}
		rt.emit(lifecyclebus.ModuleInitialized, n.desc.Name)
	}
	return nil
}

// Migrate calls Migrate on every DATABASE-capable instance, in dependency
// order (spec.md §4.4 phase 2). It is the caller's responsibility to ensure
// this runs only after Init has completed for all modules.
func (rt *Runtime) Migrate(ctx context.Context) error {
	for _, n := range rt.graph.order {
		if !n.desc.Capabilities.Has(module.Database) {
			continue
		}
		mig, ok := n.instance.(Migrator)
		if !ok {
			continue
		}
		if err := mig.Migrate(ctx, rt.contexts[n.desc.Name], rt.db); err != nil {
			return fmt.Errorf("migrate %q: %w", n.desc.Name, err)
		}
	}
	return nil
}

// RegisterREST starts from an empty router and a fresh OpenAPI registry,
// calls RegisterREST on every REST-capable instance in order (each
// replacing the router with its return value), then hands the finalized
// router and registry to the REST_HOST instance via RESTHostReceiver
// (spec.md §4.4 phase 3). All migrate calls are required to have completed
// before this runs (§5 ordering guarantees); the orchestrator enforces the
// sequencing by calling phases in order.
func (rt *Runtime) RegisterREST(title, version string) error {
	router := chi.NewRouter()
	reg := openapi.NewRegistry(title, version)

	for _, n := range rt.graph.order {
		if !n.desc.Capabilities.Has(module.REST) {
			continue
		}
		registrar, ok := n.instance.(RESTRegistrar)
		if !ok {
			continue
		}
		next, err := registrar.RegisterREST(rt.contexts[n.desc.Name], router, reg)
		if err != nil {
			return fmt.Errorf("register_rest %q: %w", n.desc.Name, err)
		}
		router = next
	}

	rt.router = router
	rt.openapiReg = reg

	if hostName := rt.graph.RESTHostName(); hostName != "" {
		for _, n := range rt.graph.order {
			if n.desc.Name != hostName {
				continue
			}
			if receiver, ok := n.instance.(RESTHostReceiver); ok {
				receiver.SetRouter(router, reg)
			}
		}
	}
	return nil
}

// Start spawns every STATEFUL instance's Run method inside a
// pkg/lifecycle.Wrapper, in dependency order, and awaits each one's
// readiness before moving to the next (spec.md §4.4 phase 4). A module's
// start failure triggers reverse-order Stop of everything already started.
func (rt *Runtime) Start(parent cancel.Token) error {
	started := make([]string, 0, len(rt.graph.order))

	for _, n := range rt.graph.order {
		if !n.desc.Capabilities.Has(module.Stateful) {
			continue
		}
		runnable, ok := n.instance.(Runnable)
		if !ok {
			continue
		}

		mc := rt.contexts[n.desc.Name]
		awaitReady := true
		if opt, ok := n.instance.(AwaitReadyOptIn); ok {
			awaitReady = opt.AwaitReady()
		}
		stopTimeout := defaultStopTimeout
		if st, ok := n.instance.(StopTimeouter); ok {
			if secs, on := st.StopTimeout(); on {
				stopTimeout = time.Duration(secs) * time.Second
			}
		}

		name := n.desc.Name
		wrapper := lifecycle.New(func(token cancel.Token, ready *cancel.ReadySignal) error {
			return runnable.Run(mc, token, ready)
		}, lifecycle.Options{
			Name:        name,
			AwaitReady:  awaitReady,
			StopTimeout: stopTimeout,
			Log:         mc.Log(),
		})
		rt.wrappers[name] = wrapper

		if err := wrapper.Start(parent); err != nil {
			rt.stopStarted(started)
			return fmt.Errorf("start %q: %w", name, err)
		}
		rt.emit(lifecyclebus.ModuleStarted, name)
		started = append(started, name)
	}
	return nil
}

// Stop iterates the started STATEFUL modules in reverse order, stopping
// each via its lifecycle.Wrapper; failures (including Timeout) are logged
// but never abort the remaining stops (spec.md §4.4 phase 5, §7).
func (rt *Runtime) Stop() {
	rt.stopStarted(rt.startedNames())
}

func (rt *Runtime) startedNames() []string {
	var names []string
	for _, n := range rt.graph.order {
		if _, ok := rt.wrappers[n.desc.Name]; ok {
			names = append(names, n.desc.Name)
		}
	}
	return names
}

func (rt *Runtime) stopStarted(started []string) {
	for i := len(started) - 1; i >= 0; i-- {
		name := started[i]
		wrapper, ok := rt.wrappers[name]
		if !ok {
			continue
		}
		outcome := wrapper.Stop()
		log := rt.contexts[name].Log()
		switch outcome {
		case lifecycle.Timeout:
			log.Warn().Str("module", name).Msg("module stop timed out, abandoned")
			rt.emit(lifecyclebus.ModuleTimeout, name)
		case lifecycle.Cancelled, lifecycle.Finished:
			log.Debug().Str("module", name).Str("outcome", outcome.String()).Msg("module stopped")
			rt.emit(lifecyclebus.ModuleStopped, name)
		}
		delete(rt.wrappers, name)
	}
}
