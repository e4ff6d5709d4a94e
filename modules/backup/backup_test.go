package backup

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperspotdev/hyperspot/internal/config"
	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/modules/directory"
	"github.com/hyperspotdev/hyperspot/pkg/cancel"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
)

// fakeUploader records every Upload call instead of talking to S3.
type fakeUploader struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, body io.Reader) error {
	if _, err := io.ReadAll(body); err != nil {
		return err
	}
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeUploader) uploadedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func newTestBackup(t *testing.T) (*Module, *hctx.ModuleContext, *fakeUploader) {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{URL: "file::memory:?cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hub := clienthub.New()

	dirMC := hctx.New("directory", nil, db, hub, cancel.New(), zerolog.Nop())
	dirModule := &directory.Module{}
	require.NoError(t, dirModule.Migrate(context.Background(), dirMC, db))
	require.NoError(t, dirModule.Init(context.Background(), dirMC))

	mc := hctx.New("backup", nil, db, hub, cancel.New(), zerolog.Nop())
	m := &Module{}
	reader, err := clienthub.Resolve[directory.Reader](hub, clienthub.GlobalScope, directory.ClientInterfaceID)
	require.NoError(t, err)

	uploader := &fakeUploader{}
	m.mu.Lock()
	m.cfg = Config{CronSchedule: "@every 100ms", KeyPrefix: "test-backups"}
	m.db = db
	m.reader = reader
	m.uploader = uploader
	m.mu.Unlock()

	return m, mc, uploader
}

func TestRunOnce_UploadsSnapshotAndRecordsStatus(t *testing.T) {
	m, mc, uploader := newTestBackup(t)

	m.runOnce(context.Background(), mc)

	status := m.StatusSnapshot()
	assert.Equal(t, 1, status.RunCount)
	assert.Empty(t, status.LastError)
	assert.NotEmpty(t, status.LastObjectKey)
	assert.Len(t, uploader.uploadedKeys(), 1)
}

func TestRun_SchedulesAndStopsOnCancel(t *testing.T) {
	m, mc, uploader := newTestBackup(t)

	root := cancel.New()
	ready := cancel.NewReadySignal()
	done := make(chan error, 1)
	go func() { done <- m.Run(mc, root, ready) }()

	select {
	case <-ready.AwaitReady():
	case <-time.After(time.Second):
		t.Fatal("run never signaled ready")
	}

	deadline := time.After(2 * time.Second)
	for len(uploader.uploadedKeys()) == 0 {
		select {
		case <-deadline:
			t.Fatal("cron never fired a backup")
		case <-time.After(20 * time.Millisecond):
		}
	}

	root.Cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
