// Command edgesearch runs the full-text search service standalone,
// playing the role the edge platform's KV namespace and durable-object
// runtime otherwise play: a local bbolt file or in-memory map for
// storage, and an in-process actor for bulk reads.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/dzlab/edgesearch/internal/backup"
	"github.com/dzlab/edgesearch/internal/bulk"
	"github.com/dzlab/edgesearch/internal/catalog"
	"github.com/dzlab/edgesearch/internal/config"
	"github.com/dzlab/edgesearch/internal/document"
	"github.com/dzlab/edgesearch/internal/durable"
	"github.com/dzlab/edgesearch/internal/httpapi"
	"github.com/dzlab/edgesearch/internal/keyword"
	"github.com/dzlab/edgesearch/internal/kvstore"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, env vars still apply on top)")
	snapshotDir := flag.String("snapshot-dir", "", "local directory to receive periodic KV snapshots (disabled if empty and -snapshot-bucket is also empty)")
	snapshotBucket := flag.String("snapshot-bucket", "", "S3 bucket to receive periodic KV snapshots, takes precedence over -snapshot-dir")
	snapshotInterval := flag.Duration("snapshot-interval", 0, "how often to snapshot the KV store (disabled if zero)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("edgesearch: load config: %v", err)
	}

	kv, closeKV, err := openStore(cfg)
	if err != nil {
		log.Fatalf("edgesearch: open store: %v", err)
	}
	defer closeKV()

	extractor := keyword.New(keyword.Config{
		NGrams:       cfg.YakeNGrams,
		MinimumChars: cfg.YakeMinimumChars,
	})
	actor := durable.New(kv, cfg.NShards)
	reader := bulk.New(kv, actor, cfg.NShards)

	svc := &httpapi.Service{
		Catalog:   catalog.New(kv),
		Documents: document.NewStore(kv, extractor, cfg.NShards),
		Reader:    reader,
	}

	if snapshotter := maybeSnapshotter(kv, *snapshotBucket, *snapshotDir); snapshotter != nil && *snapshotInterval > 0 {
		go runPeriodicSnapshots(context.Background(), snapshotter, *snapshotInterval)
	}

	router := httpapi.NewRouter(svc, cfg.APIKey)
	log.Printf("edgesearch: listening on %s (kv=%s, n_shards=%d)", cfg.ListenAddr, cfg.KVBackend, cfg.NShards)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("edgesearch: server stopped: %v", err)
	}
}

// maybeSnapshotter builds a Snapshotter backed by S3 (if bucket is set) or
// the local filesystem (if dir is set), or returns nil if neither is
// configured — periodic snapshotting is opt-in.
func maybeSnapshotter(kv kvstore.Store, bucket, dir string) *backup.Snapshotter {
	switch {
	case bucket != "":
		storage, err := backup.NewS3Storage(bucket)
		if err != nil {
			log.Printf("edgesearch: snapshot to s3://%s disabled: %v", bucket, err)
			return nil
		}
		return backup.NewSnapshotter(kv, storage)
	case dir != "":
		storage, err := backup.NewLocalFileStorage(dir)
		if err != nil {
			log.Printf("edgesearch: snapshot to %s disabled: %v", dir, err)
			return nil
		}
		return backup.NewSnapshotter(kv, storage)
	default:
		return nil
	}
}

// runPeriodicSnapshots dumps the whole KV namespace on every tick, the
// same ticker-loop shape the demo searcher uses to poll for fresh index
// segments.
func runPeriodicSnapshots(ctx context.Context, snapshotter *backup.Snapshotter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := snapshotter.Snapshot(ctx, "full", ""); err != nil {
				log.Printf("edgesearch: snapshot failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// openStore opens the KV backend named in cfg, returning a close
// function that is a no-op for the backend with nothing to flush.
func openStore(cfg *config.Config) (kvstore.Store, func(), error) {
	switch cfg.KVBackend {
	case "bolt":
		store, err := kvstore.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("edgesearch: close bolt store: %v", err)
			}
		}, nil
	default:
		return kvstore.NewMemoryStore(), func() {}, nil
	}
}
