package postings

import (
	"context"
	"testing"

	"github.com/dzlab/edgesearch/internal/kvstore"
)

func TestLoadOrCreateCreatesEmptyShard(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemoryStore(), 48)

	shard, err := store.LoadOrCreate(ctx, "blog", "doc-1", "golang")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if len(shard.Docs) != 0 {
		t.Fatalf("new shard has %d docs, want 0", len(shard.Docs))
	}
	if shard.Index != "blog" || shard.Keyword != "golang" {
		t.Fatalf("shard = %+v, want index=blog keyword=golang", shard)
	}

	reloaded, err := store.LoadOrCreate(ctx, "blog", "doc-1", "golang")
	if err != nil {
		t.Fatalf("second LoadOrCreate: %v", err)
	}
	if reloaded.ShardID != shard.ShardID {
		t.Fatalf("shard id changed across loads: %d != %d", reloaded.ShardID, shard.ShardID)
	}
}

func TestAddIsIdempotentOnDocID(t *testing.T) {
	ctx := context.Background()
	store := New(kvstore.NewMemoryStore(), 48)
	shard, err := store.LoadOrCreate(ctx, "blog", "doc-1", "golang")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}

	if err := store.Add(ctx, shard, "doc-1", 0.5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(shard.Docs) != 1 || shard.Docs[0].Score != 0.5 {
		t.Fatalf("shard after first add = %+v, want one doc at score 0.5", shard.Docs)
	}

	if err := store.Add(ctx, shard, "doc-1", 0.9); err != nil {
		t.Fatalf("Add (duplicate): %v", err)
	}
	if len(shard.Docs) != 1 || shard.Docs[0].Score != 0.5 {
		t.Fatalf("shard after duplicate add = %+v, want score unchanged at 0.5", shard.Docs)
	}
}

func TestRemoveOnlyWritesWhenPresent(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	store := New(kv, 48)
	shard, err := store.LoadOrCreate(ctx, "blog", "doc-1", "golang")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if err := store.Add(ctx, shard, "doc-1", 0.5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, shard, "doc-2", 0.7); err != nil {
		t.Fatalf("Add doc-2: %v", err)
	}

	beforeTs := shard.Ts
	if err := store.Remove(ctx, shard, "doc-never-added"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if len(shard.Docs) != 2 {
		t.Fatalf("Remove of absent doc mutated docs: %+v", shard.Docs)
	}
	if shard.Ts != beforeTs {
		t.Fatalf("Remove of absent doc bumped ts")
	}

	if err := store.Remove(ctx, shard, "doc-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(shard.Docs) != 1 || shard.Docs[0].DocID != "doc-2" {
		t.Fatalf("shard after remove = %+v, want only doc-2", shard.Docs)
	}

	reloaded, err := store.read(ctx, store.key("blog", "golang", shard.ShardID))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(reloaded.Docs) != 1 || reloaded.Docs[0].DocID != "doc-2" {
		t.Fatalf("persisted shard = %+v, want only doc-2", reloaded.Docs)
	}
}
