// Package orchestrator implements the process entry point (spec.md §4.9,
// C9): load configuration, construct the shared collaborators, discover
// every module registered at link time, run the five orchestration phases
// in order, block until shutdown is requested, then stop in reverse order.
// It generalizes the teacher's cmd/server/main.go numbered startup sequence
// (config → logging → DI wiring → HTTP server → background monitors →
// signal wait → graceful shutdown) from one hand-assembled dependency graph
// to the data-driven one internal/registry builds from whatever modules
// were blank-imported.
package orchestrator

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hyperspotdev/hyperspot/internal/config"
	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/logging"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/lifecyclebus"
)

// Options configures one Run. Only ConfigOptions is required; everything
// else has a production default and exists as a seam for tests.
type Options struct {
	// ConfigOptions is forwarded to internal/config.Load.
	ConfigOptions config.Options
	// Title and Version label the OpenAPI document the REST phase builds.
	Title, Version string
	// Shutdown, if non-nil, replaces the default OS-signal shutdown source
	// (SIGINT/SIGTERM) — tests supply an explicit channel instead.
	Shutdown <-chan struct{}
	// SkipDatabase disables the database factory entirely, even if
	// Config.Database.URL is set — used by tests that have no need for a
	// real SQLite file and want Init to see a nil *database.DB.
	SkipDatabase bool
}

// Run executes one complete orchestration lifecycle and returns the
// process exit code: 0 on clean shutdown, non-zero if any phase fails
// fatally (spec.md §4.9, §6). It never calls os.Exit itself — main is
// expected to do that with the returned code.
func Run(opts Options) int {
	if opts.ConfigOptions.ModuleNames == nil {
		for _, d := range registry.Registrations {
			opts.ConfigOptions.ModuleNames = append(opts.ConfigOptions.ModuleNames, d.Name)
		}
	}

	cfg, err := config.Load(opts.ConfigOptions)
	if err != nil {
		zerolog.New(os.Stderr).Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Default.ConsoleLevel})

	var db *database.DB
	if !opts.SkipDatabase {
		db, err = database.New(cfg.Database)
		if err != nil {
			log.Error().Err(err).Msg("failed to open database")
			return 1
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to close database cleanly")
			}
		}()
	}

	shutdown := opts.Shutdown
	if shutdown == nil {
		shutdown = osSignalShutdown()
	}

	root := cancel.New()
	go func() {
		<-shutdown
		log.Info().Msg("shutdown requested")
		root.Cancel()
	}()

	hub := clienthub.New()
	_ = clienthub.Publish(hub, clienthub.GlobalScope, lifecyclebus.InterfaceID, lifecyclebus.NewBus())

	graph, err := registry.Build(registry.Registrations)
	if err != nil {
		log.Error().Err(err).Msg("failed to build module graph")
		return 1
	}
	log.Info().Strs("modules", graph.Names()).Msg("module graph built")

	rt := registry.NewRuntime(graph, cfg, db, hub, root, log)

	ctx := context.Background()
	if err := rt.Init(ctx); err != nil {
		log.Error().Err(err).Msg("init phase failed")
		return 1
	}
	if err := rt.Migrate(ctx); err != nil {
		log.Error().Err(err).Msg("migrate phase failed")
		return 1
	}
	if err := rt.RegisterREST(opts.Title, opts.Version); err != nil {
		log.Error().Err(err).Msg("register_rest phase failed")
		return 1
	}
	if err := rt.Start(root); err != nil {
		log.Error().Err(err).Msg("start phase failed")
		return 1
	}
	log.Info().Msg("all modules started")

	<-root.Cancelled()

	rt.Stop()
	log.Info().Msg("shutdown complete")
	return 0
}

// osSignalShutdown returns a channel that closes the first time the
// process receives SIGINT or SIGTERM, the same pair cmd/server/main.go
// traps with signal.Notify before its own graceful-shutdown sequence.
func osSignalShutdown() <-chan struct{} {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-sigCh
		close(done)
	}()
	return done
}
