// Package catalog implements index descriptor CRUD: the lifecycle of an
// index itself, separate from the documents it contains.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/kvstore"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

// IndexSchemaV1 is the only descriptor schema version this package
// writes; it exists so a future incompatible layout change has
// somewhere to record itself.
const IndexSchemaV1 = 1

// reservedIndexes are names the catalog refuses to let callers create,
// because the platform itself would otherwise collide with them. Delete
// does not consult this table.
var reservedIndexes = map[string]string{
	"indexes":   "reserved for system use",
	"_internal": "reserved for internal service use",
}

// IsReserved reports whether name is off-limits for index creation.
func IsReserved(name string) bool {
	_, reserved := reservedIndexes[name]
	return reserved
}

// Descriptor is the persisted record of one index's existence.
type Descriptor struct {
	Index     string `json:"index"`
	DocsCount uint32 `json:"docs_count"`
	Version   uint8  `json:"version"`
	Created   int64  `json:"created"`
}

// Catalog persists index descriptors against a KV backend.
type Catalog struct {
	kv kvstore.Store
}

// New returns a Catalog backed by kv.
func New(kv kvstore.Store) *Catalog {
	return &Catalog{kv: kv}
}

func (c *Catalog) read(ctx context.Context, index string) (*Descriptor, error) {
	raw, err := c.kv.Get(ctx, shardkey.IndexKey(index))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, fmt.Errorf("catalog: %s: %w", index, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog: load %s: %w", index, err)
	}
	var desc Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", index, apperr.ErrParse)
	}
	return &desc, nil
}

func (c *Catalog) write(ctx context.Context, desc *Descriptor) error {
	raw, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("catalog: encode %s: %w", desc.Index, err)
	}
	if err := c.kv.Put(ctx, shardkey.IndexKey(desc.Index), raw); err != nil {
		return fmt.Errorf("catalog: persist %s: %w", desc.Index, err)
	}
	return nil
}

// Create makes index exist, returning its descriptor. Calling Create on
// an index that already exists is not an error: the existing descriptor
// is returned unchanged, matching the original's read-before-write
// idempotent-create guard.
func (c *Catalog) Create(ctx context.Context, index string) (*Descriptor, error) {
	if IsReserved(index) {
		return nil, fmt.Errorf("catalog: %s: %w", index, apperr.ErrValidation)
	}
	if existing, err := c.read(ctx, index); err == nil {
		return existing, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	desc := &Descriptor{
		Index:   index,
		Version: IndexSchemaV1,
		Created: time.Now().UnixMilli(),
	}
	if err := c.write(ctx, desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// Exists reports whether index has a descriptor, without touching its
// docs_count.
func (c *Catalog) Exists(ctx context.Context, index string) (bool, error) {
	_, err := c.read(ctx, index)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// View returns index's descriptor, refreshing its docs_count against
// actual document keys under the index if it has drifted.
func (c *Catalog) View(ctx context.Context, index string, liveCount uint32) (*Descriptor, error) {
	desc, err := c.read(ctx, index)
	if err != nil {
		return nil, err
	}
	if desc.DocsCount != liveCount {
		desc.DocsCount = liveCount
		if err := c.write(ctx, desc); err != nil {
			return nil, err
		}
	}
	return desc, nil
}

// List returns every known index name.
func (c *Catalog) List(ctx context.Context) ([]string, error) {
	var names []string
	cursor := ""
	for {
		page, err := c.kv.List(ctx, shardkey.IndexPrefix, cursor, 0)
		if err != nil {
			return nil, fmt.Errorf("catalog: list: %w", err)
		}
		for _, key := range page.Keys {
			names = append(names, strings.TrimPrefix(key, shardkey.IndexPrefix))
		}
		if page.ListComplete {
			break
		}
		cursor = page.Cursor
	}
	return names, nil
}

// Delete removes index's descriptor. It does not sweep the index's
// documents or keyword shards — same accepted-drift tradeoff as
// internal/document's Delete.
func (c *Catalog) Delete(ctx context.Context, index string) error {
	if err := c.kv.Delete(ctx, shardkey.IndexKey(index)); err != nil {
		return fmt.Errorf("catalog: delete %s: %w", index, err)
	}
	return nil
}
