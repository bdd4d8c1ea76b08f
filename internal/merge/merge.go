// Package merge flattens a keyword's physically-sharded posting lists
// into a single score-sorted document ranking.
package merge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/dzlab/edgesearch/internal/postings"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

// KeywordReader is the subset of internal/bulk.Reader a Merger needs:
// enumerate a keyword's shard keys, then bulk-read their payloads.
type KeywordReader interface {
	List(ctx context.Context, prefix string) ([]string, error)
	GetKeywordKeys(ctx context.Context, keys []string) ([][]byte, error)
}

// Merger resolves one keyword into the documents that carry it.
type Merger struct {
	index  string
	reader KeywordReader
}

// New returns a Merger resolving keywords within index using reader to
// enumerate and fetch shards.
func New(index string, reader KeywordReader) *Merger {
	return &Merger{index: index, reader: reader}
}

// Resolve URL-decodes keywordRaw, loads every existing shard of that
// keyword, and returns the union of their (doc-id, score) pairs sorted
// by score descending. Shards that no longer exist contribute nothing;
// an unknown keyword resolves to an empty, non-error result.
func (m *Merger) Resolve(ctx context.Context, keywordRaw string) ([]postings.DocScore, error) {
	keyword, err := url.QueryUnescape(keywordRaw)
	if err != nil {
		keyword = keywordRaw
	}

	prefix := shardkey.KeywordPrefixKey(m.index, keyword)
	keys, err := m.reader.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("merge: list shards for keyword %q: %w", keyword, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	payloads, err := m.reader.GetKeywordKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("merge: fetch shards for keyword %q: %w", keyword, err)
	}

	var merged []postings.DocScore
	for i, raw := range payloads {
		if len(raw) == 0 {
			continue
		}
		var shard postings.Shard
		if err := json.Unmarshal(raw, &shard); err != nil {
			return nil, fmt.Errorf("merge: decode shard %s: %w", keys[i], err)
		}
		merged = append(merged, shard.Docs...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged, nil
}
