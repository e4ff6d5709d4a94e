package api

import (
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the combined, cacheable result of one successful poll round.
type Snapshot struct {
	FetchedAt time.Time `msgpack:"fetched_at"`
	Health    Health    `msgpack:"health"`
	Document  Document  `msgpack:"document"`
}

const cacheRelPath = "hyperspotctl/last-snapshot.msgpack"

func cacheFilePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheRelPath), nil
}

// LoadCachedSnapshot reads the last successfully saved Snapshot so
// hyperspotctl has something to render immediately on launch, before its
// first poll round completes. A missing or unreadable cache is not an
// error worth surfacing — it just means there is nothing to show yet.
func LoadCachedSnapshot() (Snapshot, bool) {
	path, err := cacheFilePath()
	if err != nil {
		return Snapshot{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// SaveSnapshotCache persists snap for the next launch.
func SaveSnapshotCache(snap Snapshot) error {
	path, err := cacheFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
