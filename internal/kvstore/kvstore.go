// Package kvstore defines the flat byte-string key-value contract the
// engine treats as an external collaborator (the edge platform's KV
// namespace), plus the two concrete backends this repo ships so the module
// runs end to end without a real edge runtime: an in-memory store for tests
// and local development, and a durable single-file store backed by bbolt.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kvstore: key not found")

// ListPage is one page of a prefix listing, mirroring the cursor-based
// pagination contract of an eventually-consistent edge KV namespace.
type ListPage struct {
	Keys         []string
	Cursor       string
	ListComplete bool
}

// Store is the KV contract the core engine is built against: get, put,
// delete, and cursor-paginated list-by-prefix. Implementations need not be
// strongly consistent — the engine's concurrency model already assumes
// last-writer-wins semantics on put.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix, cursor string, limit int) (ListPage, error)
}
