// Package hctx implements the per-module context (spec.md §4.7): the
// cheap-to-construct view of config, database, client hub, and cancellation
// every module's init/migrate/register_rest/run receives, scoped to that
// module's name.
package hctx

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/logging"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/hserr"
)

// ErrInvalidConfig is returned by ModuleConfig when a module's raw
// configuration section fails to deserialize into the requested type. It
// wraps hserr.ErrInvalidConfig.
var ErrInvalidConfig = hserr.ErrInvalidConfig

// ModuleContext is constructed once per module at discovery time and handed
// to every capability-interface method that module instance implements. It
// is a thin, read-only view over shared collaborators plus a name-scoped
// cancellation token — cheap enough to build fresh per module without
// sharing mutable state between them.
type ModuleContext struct {
	name   string
	raw    json.RawMessage
	db     *database.DB
	hub    *clienthub.Hub
	cancel cancel.Token
	log    zerolog.Logger
}

// New constructs a ModuleContext for moduleName. raw may be nil if no
// modules.<name> section was present in configuration. db may be nil if no
// external database collaborator is configured. cancelRoot is the process
// root token; the context derives and owns a child of it.
func New(moduleName string, raw json.RawMessage, db *database.DB, hub *clienthub.Hub, cancelRoot cancel.Token, log zerolog.Logger) *ModuleContext {
	return &ModuleContext{
		name:   moduleName,
		raw:    raw,
		db:     db,
		hub:    hub,
		cancel: cancelRoot.Child(),
		log:    logging.Module(log, moduleName),
	}
}

// ModuleName returns the descriptor name this context is scoped to.
func (c *ModuleContext) ModuleName() string {
	return c.name
}

// DB returns the shared database handle and whether one is configured.
func (c *ModuleContext) DB() (*database.DB, bool) {
	return c.db, c.db != nil
}

// ClientHub returns the process-wide typed client hub.
func (c *ModuleContext) ClientHub() *clienthub.Hub {
	return c.hub
}

// CancelToken returns this module's cancellation token, a child of the root
// token cancelled during the stop phase.
func (c *ModuleContext) CancelToken() cancel.Token {
	return c.cancel
}

// Log returns a logger scoped to this module.
func (c *ModuleContext) Log() zerolog.Logger {
	return c.log
}

// ModuleConfig deserializes the module's raw modules.<name> JSON section
// into T. If no section was present, it returns T's zero value (its
// "default") and a nil error. A deserialization failure is reported as
// ErrInvalidConfig.
func ModuleConfig[T any](c *ModuleContext) (T, error) {
	var cfg T
	if len(c.raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(c.raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: module %q: %v", ErrInvalidConfig, c.name, err)
	}
	return cfg, nil
}
