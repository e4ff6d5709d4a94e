// Package backup is an example CORE+DATABASE+REST+STATEFUL module
// (spec.md SPEC_FULL.md §2 C11): it depends on modules/directory via the
// client hub, and on a cron schedule (robfig/cron/v3) snapshots the shared
// database to an S3-compatible bucket (aws-sdk-go-v2 + s3 + s3/manager).
package backup

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/modules/directory"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/hserr"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

func init() {
	registry.Register(module.Descriptor{
		Name:         "backup",
		Dependencies: []string{"directory", "db"},
		Capabilities: module.NewSet(module.Core, module.Database, module.REST, module.Stateful),
		New:          func() (module.Instance, error) { return &Module{}, nil },
	})
}

// Status is the snapshot of the most recent run, served by GET
// /backup/status.
type Status struct {
	LastRunAt    time.Time `json:"last_run_at,omitempty"`
	LastObjectKey string   `json:"last_object_key,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	RunCount     int       `json:"run_count"`
}

// Module is the backup instance.
type Module struct {
	mu       sync.Mutex
	cfg      Config
	db       *database.DB
	reader   directory.Reader
	uploader snapshotUploader
	status   Status
	cron     *cron.Cron
}

func (m *Module) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	cfg, err := hctx.ModuleConfig[Config](mc)
	if err != nil {
		return err
	}
	cfg.applyDefaults()

	db, ok := mc.DB()
	if !ok {
		return fmt.Errorf("backup: %w", hserr.ErrDatabaseRequired)
	}

	reader, err := clienthub.Resolve[directory.Reader](mc.ClientHub(), clienthub.GlobalScope, directory.ClientInterfaceID)
	if err != nil {
		return fmt.Errorf("backup: resolving directory.Reader: %w", err)
	}

	uploader, err := newS3Uploader(ctx, cfg)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	m.mu.Lock()
	m.cfg = cfg
	m.db = db
	m.reader = reader
	m.uploader = uploader
	m.mu.Unlock()
	return nil
}

// Run starts the cron scheduler and blocks until token is cancelled, then
// stops the scheduler and waits for any in-flight run to finish (spec.md
// §4.4 phase 4 — STATEFUL entry point).
func (m *Module) Run(mc *hctx.ModuleContext, token cancel.Token, ready *cancel.ReadySignal) error {
	m.mu.Lock()
	schedule := m.cfg.CronSchedule
	m.mu.Unlock()

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.runOnce(context.Background(), mc) }); err != nil {
		return fmt.Errorf("backup: invalid cron_schedule %q: %w", schedule, err)
	}

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	c.Start()
	ready.Notify()

	<-token.Cancelled()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

// runOnce performs one backup: snapshot the shared database file to a
// temporary path via VACUUM INTO, then upload it. Directory users are
// counted (via the resolved Reader) purely to demonstrate the cross-module
// dependency — the count is not itself part of the uploaded snapshot.
func (m *Module) runOnce(ctx context.Context, mc *hctx.ModuleContext) {
	m.mu.Lock()
	db, uploader, prefix := m.db, m.uploader, m.cfg.KeyPrefix
	m.mu.Unlock()

	users, err := m.reader.List(ctx)
	if err != nil {
		mc.Log().Warn().Err(err).Msg("backup: counting directory users failed, continuing")
	}

	tmpPath, err := snapshotToTempFile(ctx, db)
	if err != nil {
		m.recordResult("", err)
		return
	}
	defer os.Remove(tmpPath)

	key := fmt.Sprintf("%s/%s.db", prefix, time.Now().UTC().Format("20060102T150405Z"))
	f, err := os.Open(tmpPath)
	if err != nil {
		m.recordResult("", fmt.Errorf("backup: open snapshot: %w", err))
		return
	}
	defer f.Close()

	if err := uploader.Upload(ctx, key, f); err != nil {
		m.recordResult("", fmt.Errorf("backup: upload: %w", err))
		return
	}

	mc.Log().Info().Str("key", key).Int("directory_users", len(users)).Msg("backup: snapshot uploaded")
	m.recordResult(key, nil)
}

func (m *Module) recordResult(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.LastRunAt = time.Now().UTC()
	m.status.RunCount++
	if err != nil {
		m.status.LastError = err.Error()
		return
	}
	m.status.LastObjectKey = key
	m.status.LastError = ""
}

// StatusSnapshot returns the current Status.
func (m *Module) StatusSnapshot() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func snapshotToTempFile(ctx context.Context, db *database.DB) (string, error) {
	tmp, err := os.CreateTemp("", "hyperspot-backup-*.db")
	if err != nil {
		return "", fmt.Errorf("create temp snapshot file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(path) // VACUUM INTO requires the target not to exist yet

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return path, nil
}
