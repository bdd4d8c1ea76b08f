package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/document"
	"github.com/dzlab/edgesearch/internal/query"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

func (s *Service) handleRoot(c *gin.Context) {
	if wantsHTML(c) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPageHTML))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

func (s *Service) handleListIndexes(c *gin.Context) {
	names, err := s.Catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

func (s *Service) handleGetIndex(c *gin.Context) {
	ctx := c.Request.Context()
	index := c.Param("index")

	count, err := s.liveDocCount(ctx, index)
	if err != nil {
		respondError(c, err)
		return
	}
	desc, err := s.Catalog.View(ctx, index, count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, desc)
}

func (s *Service) handleCreateIndex(c *gin.Context) {
	desc, err := s.Catalog.Create(c.Request.Context(), c.Param("index"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, desc)
}

func (s *Service) handleDeleteIndex(c *gin.Context) {
	if err := s.Catalog.Delete(c.Request.Context(), c.Param("index")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Service) handleGetDocument(c *gin.Context) {
	doc, err := s.Documents.Get(c.Request.Context(), c.Param("index"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// handleCreateDocument serves both POST /:index/doc (generated id) and
// POST /:index/doc/:id (caller-supplied id) — c.Param("id") is empty for
// the former.
func (s *Service) handleCreateDocument(c *gin.Context) {
	ctx := c.Request.Context()
	index := c.Param("index")

	exists, err := s.Catalog.Exists(ctx, index)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		respondError(c, fmt.Errorf("httpapi: index %q: %w", index, apperr.ErrNotFound))
		return
	}

	doc, err := document.New(index, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if lang := c.Query("lang"); lang != "" {
		doc.Lang = lang
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, fmt.Errorf("httpapi: read request body: %w", apperr.ErrValidation))
		return
	}

	if _, err := s.Documents.Update(ctx, doc, string(body), c.Query("format"), false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Service) handleUpdateDocument(c *gin.Context) {
	ctx := c.Request.Context()
	index, id := c.Param("index"), c.Param("id")

	doc, err := s.Documents.Get(ctx, index, id)
	if err != nil {
		respondError(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, fmt.Errorf("httpapi: read request body: %w", apperr.ErrValidation))
		return
	}

	revision, err := s.Documents.Update(ctx, doc, string(body), c.Query("format"), false)
	if err != nil {
		respondError(c, err)
		return
	}

	scores := make(map[string]float64, len(doc.Keywords))
	for _, kw := range doc.Keywords {
		scores[kw.Word] = kw.Score
	}
	c.JSON(http.StatusOK, gin.H{
		"updated":  true,
		"scores":   scores,
		"revision": revision,
	})
}

func (s *Service) handleDeleteDocument(c *gin.Context) {
	err := s.Documents.Delete(c.Request.Context(), c.Param("index"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Service) handleSearch(c *gin.Context) {
	ctx := c.Request.Context()
	index := c.Param("index")

	q := c.Query("query")
	if q == "" {
		respondError(c, fmt.Errorf("httpapi: missing query parameter: %w", apperr.ErrValidation))
		return
	}
	full := c.Query("full") == "true"

	executor := query.NewExecutor(s.merger(index))
	results, err := executor.Query(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}

	matches := make([]gin.H, len(results))
	for i, r := range results {
		keywords := make([]gin.H, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			keywords = append(keywords, gin.H{"keyword": kw.Keyword, "score": kw.Score})
		}
		matches[i] = gin.H{
			"doc_id":   r.DocID,
			"score":    r.Score,
			"keywords": keywords,
		}
	}

	if full {
		if err := s.populateBodies(ctx, index, results, matches); err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"document_count": len(results),
		"matches":        matches,
	})
}

// populateBodies bulk-reads the body of every matched document through
// the durable-actor-backed reader, so a search with many hits under
// full=true still respects the platform's per-request KV operation
// ceiling instead of issuing one get per match.
func (s *Service) populateBodies(ctx context.Context, index string, results []query.Result, matches []gin.H) error {
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = shardkey.DocumentKey(index, r.DocID)
	}

	payloads, err := s.Reader.GetDocumentKeys(ctx, keys)
	if err != nil {
		return fmt.Errorf("httpapi: bulk-read document bodies: %w", err)
	}

	for i, raw := range payloads {
		if len(raw) == 0 {
			continue
		}
		var doc document.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("httpapi: decode document %s: %w", keys[i], err)
		}
		matches[i]["body"] = doc.Body
	}
	return nil
}

func (s *Service) handleKeyword(c *gin.Context) {
	index, keyword := c.Param("index"), c.Param("keyword")

	docs, err := s.merger(index).Resolve(c.Request.Context(), keyword)
	if err != nil {
		respondError(c, err)
		return
	}

	scores := make(map[string]float64, len(docs))
	for _, d := range docs {
		scores[d.DocID] = d.Score
	}
	c.JSON(http.StatusOK, gin.H{
		"keyword":        keyword,
		"document_count": len(docs),
		"scores":         scores,
	})
}
