// Package httpapi wires the engine's internal packages (catalog, document,
// bulk, merge, query) behind a gin router: the REST surface, the shared-secret
// auth middleware, and the error-kind-to-status-code mapping.
package httpapi

import (
	"context"

	"github.com/dzlab/edgesearch/internal/bulk"
	"github.com/dzlab/edgesearch/internal/catalog"
	"github.com/dzlab/edgesearch/internal/document"
	"github.com/dzlab/edgesearch/internal/merge"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

// Service holds the dependencies every route handler needs. It has no
// behavior of its own beyond small glue methods; the real logic lives in
// the packages it wires together.
type Service struct {
	Catalog   *catalog.Catalog
	Documents *document.Store
	Reader    *bulk.Reader
}

// merger returns a keyword merger scoped to index.
func (s *Service) merger(index string) *merge.Merger {
	return merge.New(index, s.Reader)
}

// liveDocCount counts the documents currently stored under index by
// listing its document-key prefix, for IndexDescriptor.docs_count recount.
func (s *Service) liveDocCount(ctx context.Context, index string) (uint32, error) {
	keys, err := s.Reader.List(ctx, shardkey.DocumentPrefixKey(index))
	if err != nil {
		return 0, err
	}
	return uint32(len(keys)), nil
}
