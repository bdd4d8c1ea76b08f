// Package postings implements the per-shard posting list for one keyword:
// the (doc-id, score) pairs stored under a single KV key, and the
// load-or-create, add, and remove operations a document update fans out
// across.
package postings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/kvstore"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

// DocScore pairs a document id with its score within one keyword shard.
type DocScore struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Shard is one physical partition of one keyword's posting list.
type Shard struct {
	Index   string     `json:"index"`
	Keyword string     `json:"keyword"`
	ShardID uint32     `json:"shard"`
	Ts      int64      `json:"ts"`
	Docs    []DocScore `json:"docs"`
}

// Store persists keyword shards against a KV backend.
type Store struct {
	kv      kvstore.Store
	nShards uint32
}

// New returns a Store writing shards to kv, addressed for a deployment
// with nShards keyword shards.
func New(kv kvstore.Store, nShards uint32) *Store {
	return &Store{kv: kv, nShards: nShards}
}

func (s *Store) key(index, keyword string, shard uint32) string {
	return shardkey.KeywordShardKey(index, keyword, shard)
}

func (s *Store) read(ctx context.Context, key string) (*Shard, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var shard Shard
	if err := json.Unmarshal(raw, &shard); err != nil {
		return nil, fmt.Errorf("postings: decode shard %s: %w", key, apperr.ErrParse)
	}
	return &shard, nil
}

func (s *Store) write(ctx context.Context, shard *Shard) error {
	raw, err := json.Marshal(shard)
	if err != nil {
		return fmt.Errorf("postings: encode shard %s: %w", s.key(shard.Index, shard.Keyword, shard.ShardID), err)
	}
	if err := s.kv.Put(ctx, s.key(shard.Index, shard.Keyword, shard.ShardID), raw); err != nil {
		return fmt.Errorf("postings: write shard: %w", err)
	}
	return nil
}

// LoadOrCreate returns the shard of keyword that docID maps to, creating
// and persisting an empty shard if none exists yet. The shard assignment
// is a pure function of docID, so repeated calls for different documents
// that happen to land on the same shard converge on one record.
func (s *Store) LoadOrCreate(ctx context.Context, index, docID, keyword string) (*Shard, error) {
	shardID := shardkey.Of(docID, s.nShards)
	key := s.key(index, keyword, shardID)

	shard, err := s.read(ctx, key)
	if err == nil {
		log.Printf("postings: loaded existing shard %s", key)
		return shard, nil
	}
	if !errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("postings: load shard %s: %w", key, err)
	}

	log.Printf("postings: creating new shard %s", key)
	shard = &Shard{
		Index:   index,
		Keyword: keyword,
		ShardID: shardID,
		Ts:      nowMillis(),
		Docs:    nil,
	}
	if err := s.write(ctx, shard); err != nil {
		return nil, err
	}
	return shard, nil
}

// Add appends (docID, score) to shard and persists it, unless docID is
// already present — the add is then a no-op, including on score, matching
// the original's idempotent-add guard.
func (s *Store) Add(ctx context.Context, shard *Shard, docID string, score float64) error {
	for _, d := range shard.Docs {
		if d.DocID == docID {
			return nil
		}
	}
	shard.Docs = append(shard.Docs, DocScore{DocID: docID, Score: score})
	shard.Ts = nowMillis()
	return s.write(ctx, shard)
}

// Remove deletes docID from shard and persists it, but only if the
// document was actually present — an absent doc-id leaves the shard (and
// its timestamp) untouched.
func (s *Store) Remove(ctx context.Context, shard *Shard, docID string) error {
	filtered := shard.Docs[:0:0]
	for _, d := range shard.Docs {
		if d.DocID != docID {
			filtered = append(filtered, d)
		}
	}
	if len(filtered) == len(shard.Docs) {
		return nil
	}
	shard.Docs = filtered
	shard.Ts = nowMillis()
	return s.write(ctx, shard)
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
