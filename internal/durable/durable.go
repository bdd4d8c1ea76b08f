// Package durable models the edge platform's durable-object actor: a
// single addressable component that amplifies the per-request KV
// operation quota by batching many key reads behind one invocation. The
// platform itself is an external collaborator; this package only needs to
// behave the way the platform's fetch handler behaves.
package durable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/framing"
	"github.com/dzlab/edgesearch/internal/kvstore"
)

// DocumentLimit is the maximum number of document keys one invocation will
// accept, matching the original reader's fixed ceiling.
const DocumentLimit = 990

// KeywordLimit returns the maximum number of keyword-shard keys one
// invocation will accept for a deployment sharded into nShards pieces.
func KeywordLimit(nShards uint32) int {
	if nShards == 0 {
		nShards = 1
	}
	return 1000 / int(nShards)
}

// Path names the two batch-read endpoints the actor exposes.
type Path string

const (
	PathKeywords  Path = "/keywords"
	PathDocuments Path = "/documents"
)

// Actor is the in-process stand-in for a durable-object instance: given a
// batch of KV keys, it reads them all and returns the concatenated,
// length-prefixed payloads in one response.
type Actor struct {
	store   kvstore.Store
	nShards uint32
}

// New returns an Actor reading from store, sized for a deployment with
// nShards keyword shards.
func New(store kvstore.Store, nShards uint32) *Actor {
	return &Actor{store: store, nShards: nShards}
}

// Invoke parses body as a comma-separated list of KV keys, validates it
// against the limit for path, reads every key in parallel, and returns the
// framed concatenation of the values. A key with no value contributes an
// empty payload at its position, preserving positional correspondence
// between the request and the response; any other read failure aborts the
// whole invocation.
func (a *Actor) Invoke(ctx context.Context, path Path, body []byte) ([]byte, error) {
	invocationID := ulid.Make().String()

	keys := parseCSVKeys(body)
	if len(keys) == 0 {
		return nil, fmt.Errorf("durable[%s]: empty key list: %w", invocationID, apperr.ErrValidation)
	}

	limit := a.limitFor(path)
	if len(keys) > limit {
		return nil, fmt.Errorf("durable[%s]: %d keys exceeds limit %d for %s: %w", invocationID, len(keys), limit, path, apperr.ErrValidation)
	}

	payloads, err := a.readAll(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("durable[%s]: %w", invocationID, err)
	}
	log.Printf("durable[%s]: %s batch of %d keys", invocationID, path, len(keys))
	return framing.Encode(payloads), nil
}

func (a *Actor) limitFor(path Path) int {
	if path == PathDocuments {
		return DocumentLimit
	}
	return KeywordLimit(a.nShards)
}

// readAll fetches every key in parallel, returning a slice the same
// length as keys: values[i] is the value of keys[i], or a zero-length
// slice if keys[i] had no value.
func (a *Actor) readAll(ctx context.Context, keys []string) ([][]byte, error) {
	values := make([][]byte, len(keys))
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			v, err := a.store.Get(ctx, key)
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
			return nil, err
		}
	}
	return values, nil
}

// parseCSVKeys splits a comma-separated key list, dropping empty entries
// produced by leading/trailing/doubled commas.
func parseCSVKeys(body []byte) []string {
	var keys []string
	for _, part := range bytes.Split(body, []byte(",")) {
		trimmed := bytes.TrimSpace(part)
		if len(trimmed) == 0 {
			continue
		}
		keys = append(keys, string(trimmed))
	}
	return keys
}
