package query

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/dzlab/edgesearch/internal/postings"
)

// KeywordResolver resolves one keyword into its current postings.
// internal/merge.Merger satisfies this.
type KeywordResolver interface {
	Resolve(ctx context.Context, keyword string) ([]postings.DocScore, error)
}

// KeywordMatch is one (keyword, score) contribution to a document's
// match within a single query evaluation.
type KeywordMatch struct {
	Keyword string
	Score   float64
}

// Result is one document matching a query, with its collective score
// and the per-keyword matches that produced it.
type Result struct {
	DocID    string
	Score    float64
	Keywords []KeywordMatch
}

// docMatches maps doc-id to the keyword matches collected for it so far
// during one AST evaluation.
type docMatches map[string][]KeywordMatch

// Executor runs boolean queries against one index's keyword postings.
type Executor struct {
	resolver KeywordResolver
}

// NewExecutor returns an Executor resolving keywords through resolver.
func NewExecutor(resolver KeywordResolver) *Executor {
	return &Executor{resolver: resolver}
}

// Query tokenizes and parses queryStr, preloads postings for every
// keyword referenced in it, then evaluates the AST into ranked results.
func (e *Executor) Query(ctx context.Context, queryStr string) ([]Result, error) {
	tokens, err := Tokenize(queryStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	ast, err := Parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	cache, err := e.preloadKeywordData(ctx, ast)
	if err != nil {
		return nil, err
	}
	log.Printf("query: executing AST=%s", ast)

	matches := evaluate(ast, docMatches{}, cache)

	results := make([]Result, 0, len(matches))
	for docID, kws := range matches {
		results = append(results, Result{
			DocID:    docID,
			Score:    scoreCollectiveKeywords(kws),
			Keywords: kws,
		})
	}
	// Ordering is not part of the scoring contract; sorted descending
	// here purely for a stable, useful presentation order.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// collectKeywords walks expr collecting every Word leaf's value,
// duplicates included — preloadKeywordData is responsible for dedup.
func collectKeywords(expr Expr) []string {
	switch e := expr.(type) {
	case Word:
		return []string{e.Value}
	case Not:
		return collectKeywords(e.Inner)
	case And:
		return append(collectKeywords(e.Left), collectKeywords(e.Right)...)
	case Or:
		return append(collectKeywords(e.Left), collectKeywords(e.Right)...)
	default:
		return nil
	}
}

// preloadKeywordData resolves every distinct keyword referenced in ast
// concurrently, returning a cache keyed by keyword.
func (e *Executor) preloadKeywordData(ctx context.Context, ast Expr) (map[string][]postings.DocScore, error) {
	seen := make(map[string]bool)
	var unique []string
	for _, kw := range collectKeywords(ast) {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		unique = append(unique, kw)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		cache    = make(map[string][]postings.DocScore, len(unique))
		firstErr error
	)

	for _, kw := range unique {
		wg.Add(1)
		go func(kw string) {
			defer wg.Done()
			docs, err := e.resolver.Resolve(ctx, kw)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("query: resolve keyword %q: %w", kw, err)
				}
				return
			}
			cache[kw] = docs
		}(kw)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return cache, nil
}

// evaluate walks expr, returning its matched documents. ambient is the
// most recently produced sibling result in the surrounding And/Or chain
// (or the empty set at the root); Not negates against it.
//
// Not therefore yields the ambient's documents that its inner expression
// does not match — complement within the ambient, not classical boolean
// negation. A Not at the root, or as the left operand of an And/Or that
// is itself at the root, sees the empty ambient and yields nothing; as a
// right operand it sees its left sibling's result.
func evaluate(expr Expr, ambient docMatches, cache map[string][]postings.DocScore) docMatches {
	switch e := expr.(type) {
	case Word:
		docs := cache[e.Value]
		result := make(docMatches, len(docs))
		for _, d := range docs {
			result[d.DocID] = []KeywordMatch{{Keyword: e.Value, Score: d.Score}}
		}
		return result
	case Not:
		inner := evaluate(e.Inner, ambient, cache)
		negated := make(docMatches)
		for docID, kws := range ambient {
			if _, present := inner[docID]; !present {
				negated[docID] = kws
			}
		}
		return negated
	case And:
		left := evaluate(e.Left, ambient, cache)
		right := evaluate(e.Right, left, cache)
		return intersectMerge(left, right)
	case Or:
		left := evaluate(e.Left, ambient, cache)
		right := evaluate(e.Right, left, cache)
		return unionMerge(left, right)
	default:
		return docMatches{}
	}
}

// intersectMerge keeps documents present in both sides, merging each
// kept document's keyword matches (right's keywords appended only if
// not already present by name).
func intersectMerge(left, right docMatches) docMatches {
	result := make(docMatches, len(left))
	for docID, kws := range left {
		rightKws, ok := right[docID]
		if !ok {
			continue
		}
		result[docID] = mergeKeywordMatches(kws, rightKws)
	}
	return result
}

// unionMerge keeps documents present on either side, merging keyword
// matches for documents present on both.
func unionMerge(left, right docMatches) docMatches {
	result := make(docMatches, len(left)+len(right))
	for docID, kws := range left {
		result[docID] = kws
	}
	for docID, kws := range right {
		if existing, ok := result[docID]; ok {
			result[docID] = mergeKeywordMatches(existing, kws)
		} else {
			result[docID] = kws
		}
	}
	return result
}

func mergeKeywordMatches(base, extra []KeywordMatch) []KeywordMatch {
	merged := make([]KeywordMatch, len(base), len(base)+len(extra))
	copy(merged, base)
	for _, kw := range extra {
		found := false
		for _, existing := range merged {
			if existing.Keyword == kw.Keyword {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, kw)
		}
	}
	return merged
}
