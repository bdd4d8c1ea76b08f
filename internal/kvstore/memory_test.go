package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreGetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, "a", []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "hello" {
		t.Fatalf("Get(a) = %q, want %q", v, "hello")
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("Delete of missing key should not error, got %v", err)
	}
}

func TestMemoryStorePutIsDefensivelyCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("original")
	if err := s.Put(ctx, "k", buf); err != nil {
		t.Fatalf("Put: %v", err)
	}
	buf[0] = 'X'

	v, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "original" {
		t.Fatalf("Get(k) = %q, want %q (mutation of caller buffer leaked in)", v, "original")
	}

	v[0] = 'Y'
	v2, _ := s.Get(ctx, "k")
	if string(v2) != "original" {
		t.Fatalf("Get(k) = %q, want %q (mutation of returned buffer leaked out)", v2, "original")
	}
}

func TestMemoryStoreListPrefixAndPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	keys := []string{
		"blog:kw:go:0", "blog:kw:go:1", "blog:kw:go:2",
		"blog:kw:go:3", "blog:kw:go:4",
		"blog:document:abc", "other:kw:go:0",
	}
	for _, k := range keys {
		if err := s.Put(ctx, k, []byte("v")); err != nil {
			t.Fatalf("Put(%s): %v", k, err)
		}
	}

	page, err := s.List(ctx, "blog:kw:go:", "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Keys) != 5 || !page.ListComplete {
		t.Fatalf("List unbounded = %+v, want 5 keys, complete", page)
	}

	var collected []string
	cursor := ""
	for {
		p, err := s.List(ctx, "blog:kw:go:", cursor, 2)
		if err != nil {
			t.Fatalf("List page: %v", err)
		}
		collected = append(collected, p.Keys...)
		if p.ListComplete {
			break
		}
		cursor = p.Cursor
	}
	if len(collected) != 5 {
		t.Fatalf("paginated collection = %v, want 5 keys", collected)
	}
	for i := 0; i+1 < len(collected); i++ {
		if collected[i] >= collected[i+1] {
			t.Fatalf("collected keys not strictly increasing: %v", collected)
		}
	}

	empty, err := s.List(ctx, "nope:", "", 10)
	if err != nil {
		t.Fatalf("List(nope:): %v", err)
	}
	if len(empty.Keys) != 0 || !empty.ListComplete {
		t.Fatalf("List(nope:) = %+v, want empty complete page", empty)
	}
}
