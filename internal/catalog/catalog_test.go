package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/kvstore"
)

func TestCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	first, err := cat.Create(ctx, "blog")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := cat.Create(ctx, "blog")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.Created != second.Created {
		t.Fatalf("Created timestamps differ across idempotent create: %d vs %d", first.Created, second.Created)
	}
}

func TestCreateRejectsReservedNames(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	for _, name := range []string{"indexes", "_internal"} {
		if _, err := cat.Create(ctx, name); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("Create(%q) err = %v, want ErrValidation", name, err)
		}
	}
}

func TestViewRefreshesDriftedDocsCount(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	if _, err := cat.Create(ctx, "blog"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	desc, err := cat.View(ctx, "blog", 7)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if desc.DocsCount != 7 {
		t.Fatalf("DocsCount = %d, want 7", desc.DocsCount)
	}

	reloaded, err := cat.View(ctx, "blog", 7)
	if err != nil {
		t.Fatalf("second View: %v", err)
	}
	if reloaded.DocsCount != 7 {
		t.Fatalf("DocsCount after no-op view = %d, want 7", reloaded.DocsCount)
	}
}

func TestViewMissingIndexReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	if _, err := cat.View(ctx, "missing", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListReturnsAllCreatedIndexes(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	for _, name := range []string{"blog", "docs", "news"} {
		if _, err := cat.Create(ctx, name); err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
	}

	names, err := cat.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3 (%v)", len(names), names)
	}
}

func TestExistsReflectsCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	if ok, err := cat.Exists(ctx, "blog"); err != nil || ok {
		t.Fatalf("Exists before create = %v, %v, want false, nil", ok, err)
	}
	if _, err := cat.Create(ctx, "blog"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, err := cat.Exists(ctx, "blog"); err != nil || !ok {
		t.Fatalf("Exists after create = %v, %v, want true, nil", ok, err)
	}
	if err := cat.Delete(ctx, "blog"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, err := cat.Exists(ctx, "blog"); err != nil || ok {
		t.Fatalf("Exists after delete = %v, %v, want false, nil", ok, err)
	}
}

func TestDeleteRemovesIndex(t *testing.T) {
	ctx := context.Background()
	cat := New(kvstore.NewMemoryStore())

	if _, err := cat.Create(ctx, "blog"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := cat.Delete(ctx, "blog"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cat.View(ctx, "blog", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
}
