package backup

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dzlab/edgesearch/internal/kvstore"
)

// snapshotPageSize bounds how many keys one List call (and therefore
// one shard file) covers.
const snapshotPageSize = 1000

// kvEntry is one key/value pair as written to a snapshot shard file.
// Value round-trips through JSON's automatic []byte-as-base64 encoding.
type kvEntry struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// Snapshotter dumps a KV store's contents to NDJSON shard files and
// hands the resulting directory to a SnapshotStorage backend.
type Snapshotter struct {
	kv      kvstore.Store
	storage SnapshotStorage
}

// NewSnapshotter returns a Snapshotter reading from kv and persisting
// through storage.
func NewSnapshotter(kv kvstore.Store, storage SnapshotStorage) *Snapshotter {
	return &Snapshotter{kv: kv, storage: storage}
}

// Snapshot dumps every key matching prefix (empty matches everything)
// into one NDJSON file per List page, then uploads the resulting
// directory through the configured storage backend.
func (s *Snapshotter) Snapshot(ctx context.Context, name, prefix string) error {
	dir, err := os.MkdirTemp("", "edgesearch-snapshot-"+name+"-*")
	if err != nil {
		return fmt.Errorf("backup: create snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cursor := ""
	shard := 0
	for {
		page, err := s.kv.List(ctx, prefix, cursor, snapshotPageSize)
		if err != nil {
			return fmt.Errorf("backup: list keys: %w", err)
		}

		entries := make([]kvEntry, 0, len(page.Keys))
		for _, key := range page.Keys {
			val, err := s.kv.Get(ctx, key)
			if errors.Is(err, kvstore.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("backup: read key %s: %w", key, err)
			}
			entries = append(entries, kvEntry{Key: key, Value: val})
		}
		if len(entries) > 0 {
			if err := writeShard(dir, shard, entries); err != nil {
				return err
			}
			shard++
		}

		if page.ListComplete {
			break
		}
		cursor = page.Cursor
	}

	return s.storage.UploadSnapshot(dir)
}

func writeShard(dir string, index int, entries []kvEntry) error {
	path := filepath.Join(dir, fmt.Sprintf("shard-%04d.ndjson", index))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("backup: create shard file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("backup: encode entry for %s: %w", entry.Key, err)
		}
	}
	return w.Flush()
}
