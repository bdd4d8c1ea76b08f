// Package bulk implements batched reads across many KV keys, choosing
// between direct parallel gets and chunked durable-object dispatch so a
// caller never has to think about the platform's per-request operation
// ceiling.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dzlab/edgesearch/internal/durable"
	"github.com/dzlab/edgesearch/internal/framing"
	"github.com/dzlab/edgesearch/internal/kvstore"
)

// Invoker is the subset of durable.Actor that Reader depends on; it is an
// interface so tests can substitute a call-counting double instead of a
// full Actor.
type Invoker interface {
	Invoke(ctx context.Context, path durable.Path, body []byte) ([]byte, error)
}

// Reader reads batches of KV keys, either directly or, once a batch
// exceeds the platform's per-request ceiling, by chunking the batch across
// one or more durable-object invocations.
type Reader struct {
	nShards uint32
	store   kvstore.Store
	actor   Invoker
}

// New returns a Reader backed by store for direct reads and actor for
// chunked reads, sized for a deployment with nShards keyword shards.
func New(store kvstore.Store, actor Invoker, nShards uint32) *Reader {
	return &Reader{nShards: nShards, store: store, actor: actor}
}

// List returns every KV key with the given prefix, paging through the
// store's cursor until the listing is complete.
func (r *Reader) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	cursor := ""
	for {
		page, err := r.store.List(ctx, prefix, cursor, 0)
		if err != nil {
			return nil, fmt.Errorf("bulk: list %s: %w", prefix, err)
		}
		keys = append(keys, page.Keys...)
		if page.ListComplete {
			return keys, nil
		}
		if page.Cursor == "" {
			return keys, nil
		}
		cursor = page.Cursor
	}
}

// GetKeywordKeys reads a batch of keyword-shard KV keys, returning a slice
// the same length as keys: result[i] is the payload for keys[i], or a
// zero-length slice if keys[i] had no value.
func (r *Reader) GetKeywordKeys(ctx context.Context, keys []string) ([][]byte, error) {
	limit := durable.KeywordLimit(r.nShards)
	if len(keys) < limit {
		return r.directGet(ctx, keys)
	}
	return r.chunkedGet(ctx, durable.PathKeywords, keys, limit)
}

// GetDocumentKeys reads a batch of document KV keys, with the same
// positional-correspondence contract as GetKeywordKeys.
func (r *Reader) GetDocumentKeys(ctx context.Context, keys []string) ([][]byte, error) {
	limit := durable.DocumentLimit
	if len(keys) < limit {
		return r.directGet(ctx, keys)
	}
	return r.chunkedGet(ctx, durable.PathDocuments, keys, limit)
}

func (r *Reader) directGet(ctx context.Context, keys []string) ([][]byte, error) {
	values := make([][]byte, len(keys))
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			v, err := r.store.Get(ctx, key)
			switch {
			case err == nil:
				values[i] = v
			case errors.Is(err, kvstore.ErrNotFound):
				values[i] = []byte{}
			default:
				errs[i] = fmt.Errorf("get %s: %w", key, err)
			}
		}(i, key)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("bulk: direct get: %w", err)
		}
	}
	return values, nil
}

func (r *Reader) chunkedGet(ctx context.Context, path durable.Path, keys []string, chunkSize int) ([][]byte, error) {
	var chunks [][]string
	for i := 0; i < len(keys); i += chunkSize {
		end := i + chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[i:end])
	}

	results := make([][][]byte, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()
			body := []byte(strings.Join(chunk, ","))
			resp, err := r.actor.Invoke(ctx, path, body)
			if err != nil {
				errs[i] = fmt.Errorf("invoke %s: %w", path, err)
				return
			}
			payloads, err := framing.Decode(resp)
			if err != nil {
				errs[i] = fmt.Errorf("decode %s response: %w", path, err)
				return
			}
			results[i] = payloads
		}(i, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("bulk: chunked get: %w", err)
		}
	}

	var out [][]byte
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
