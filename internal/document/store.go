package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/keyword"
	"github.com/dzlab/edgesearch/internal/kvstore"
	"github.com/dzlab/edgesearch/internal/postings"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

// Store persists documents and keeps their keyword postings in sync on
// every update.
type Store struct {
	kv        kvstore.Store
	postings  *postings.Store
	extractor *keyword.Extractor
}

// NewStore returns a Store backed by kv, extracting keywords with
// extractor and sharding postings across nShards shards.
func NewStore(kv kvstore.Store, extractor *keyword.Extractor, nShards uint32) *Store {
	return &Store{
		kv:        kv,
		postings:  postings.New(kv, nShards),
		extractor: extractor,
	}
}

// Get loads the document with the given id in index.
func (s *Store) Get(ctx context.Context, index, id string) (*Document, error) {
	raw, err := s.kv.Get(ctx, shardkey.DocumentKey(index, id))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, fmt.Errorf("document: %s/%s: %w", index, id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("document: load %s/%s: %w", index, id, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("document: decode %s/%s: %w", index, id, apperr.ErrParse)
	}
	doc.Index = index
	return &doc, nil
}

// New constructs an unpersisted Document: a fresh generated id when id is
// empty, or the caller-supplied id after validation.
func New(index, id string) (*Document, error) {
	if id == "" {
		generated, err := NewID()
		if err != nil {
			return nil, err
		}
		return &Document{ID: generated, Index: index}, nil
	}
	if !IsValidID(id) {
		return nil, fmt.Errorf("document: invalid id %q: %w", id, apperr.ErrValidation)
	}
	return &Document{ID: id, Index: index}, nil
}

func (s *Store) persist(ctx context.Context, doc *Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document: encode %s/%s: %w", doc.Index, doc.ID, err)
	}
	if err := s.kv.Put(ctx, shardkey.DocumentKey(doc.Index, doc.ID), raw); err != nil {
		return fmt.Errorf("document: persist %s/%s: %w", doc.Index, doc.ID, err)
	}
	return nil
}

// Update runs the full ingest/update pipeline against doc: detect language
// if unset or recalculateLang is set, extract keywords from body under
// format, persist the document with its revision incremented, and fan the
// keyword diff out to the posting shards. It returns the new revision.
func (s *Store) Update(ctx context.Context, doc *Document, body, format string, recalculateLang bool) (uint32, error) {
	if doc.Lang == "" || recalculateLang {
		doc.Lang = s.extractor.DetectLanguage(body)
	}

	extracted, err := s.extractor.Extract(format, doc.Lang, []byte(body))
	if err != nil {
		return 0, fmt.Errorf("document: extract keywords for %s/%s: %w", doc.Index, doc.ID, err)
	}

	oldWords := make(map[string]struct{}, len(doc.Keywords))
	for _, kw := range doc.Keywords {
		oldWords[kw.Word] = struct{}{}
	}

	newPairs := make([]KeywordPair, len(extracted))
	newWords := make(map[string]struct{}, len(extracted))
	for i, kw := range extracted {
		newPairs[i] = KeywordPair{Word: kw.Word, Score: kw.Score}
		newWords[kw.Word] = struct{}{}
	}

	var removed []string
	for w := range oldWords {
		if _, stillPresent := newWords[w]; !stillPresent {
			removed = append(removed, w)
		}
	}

	doc.Keywords = newPairs
	doc.Body = body
	doc.Revision++

	if err := s.persist(ctx, doc); err != nil {
		return 0, err
	}

	s.updatePostings(ctx, doc, removed, newPairs)
	return doc.Revision, nil
}

// updatePostings fans the keyword diff out across the posting shards in
// parallel, logging and swallowing per-keyword failures rather than
// failing the whole update — the document itself is already the
// authoritative record of its current keywords.
func (s *Store) updatePostings(ctx context.Context, doc *Document, removed []string, current []KeywordPair) {
	var wg sync.WaitGroup

	for _, kw := range removed {
		wg.Add(1)
		go func(kw string) {
			defer wg.Done()
			shard, err := s.postings.LoadOrCreate(ctx, doc.Index, doc.ID, kw)
			if err != nil {
				log.Printf("document: %s/%s: load shard for removed keyword %q: %v", doc.Index, doc.ID, kw, err)
				return
			}
			if err := s.postings.Remove(ctx, shard, doc.ID); err != nil {
				log.Printf("document: %s/%s: remove from shard for keyword %q: %v", doc.Index, doc.ID, kw, err)
			}
		}(kw)
	}

	for _, kw := range current {
		wg.Add(1)
		go func(kw KeywordPair) {
			defer wg.Done()
			shard, err := s.postings.LoadOrCreate(ctx, doc.Index, doc.ID, kw.Word)
			if err != nil {
				log.Printf("document: %s/%s: load shard for keyword %q: %v", doc.Index, doc.ID, kw.Word, err)
				return
			}
			if err := s.postings.Add(ctx, shard, doc.ID, kw.Score); err != nil {
				log.Printf("document: %s/%s: add to shard for keyword %q: %v", doc.Index, doc.ID, kw.Word, err)
			}
		}(kw)
	}

	wg.Wait()
}

// Delete removes the document record itself. It does not sweep the
// document's keyword shards: ghost entries are tolerated at query time.
// A later document created under the same id starts with no keywords,
// so its first Update removes nothing and the ghosts for keywords it
// does not share stay in place.
func (s *Store) Delete(ctx context.Context, index, id string) error {
	if err := s.kv.Delete(ctx, shardkey.DocumentKey(index, id)); err != nil {
		return fmt.Errorf("document: delete %s/%s: %w", index, id, err)
	}
	return nil
}
