package document

import (
	"context"
	"testing"

	"github.com/dzlab/edgesearch/internal/keyword"
	"github.com/dzlab/edgesearch/internal/kvstore"
	"github.com/dzlab/edgesearch/internal/postings"
)

func newTestStore() (*Store, kvstore.Store) {
	kv := kvstore.NewMemoryStore()
	extractor := keyword.New(keyword.Config{NGrams: 1, MinimumChars: 2})
	return NewStore(kv, extractor, 4), kv
}

// shardFor loads the posting shard for keyword against the same kv and
// shard count the Store under test was built with.
func shardFor(t *testing.T, kv kvstore.Store, index, docID, word string) *postings.Shard {
	t.Helper()
	pstore := postings.New(kv, 4)
	shard, err := pstore.LoadOrCreate(context.Background(), index, docID, word)
	if err != nil {
		t.Fatalf("LoadOrCreate(%q): %v", word, err)
	}
	return shard
}

func shardHasDoc(shard *postings.Shard, docID string) (float64, bool) {
	for _, d := range shard.Docs {
		if d.DocID == docID {
			return d.Score, true
		}
	}
	return 0, false
}

func TestUpdateIncrementsRevisionAndPersists(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	doc, err := New("blog", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rev, err := store.Update(ctx, doc, "programming golang concurrency patterns", "text", false)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rev != 1 {
		t.Fatalf("rev = %d, want 1", rev)
	}
	if doc.Lang == "" {
		t.Fatal("expected language to be detected")
	}
	if len(doc.Keywords) == 0 {
		t.Fatal("expected at least one keyword")
	}

	reloaded, err := store.Get(ctx, "blog", doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reloaded.Revision != 1 || reloaded.Body != doc.Body {
		t.Fatalf("reloaded = %+v, want matching persisted state", reloaded)
	}

	rev2, err := store.Update(ctx, doc, "more programming golang content", "text", false)
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if rev2 != 2 {
		t.Fatalf("rev2 = %d, want 2", rev2)
	}
}

func TestUpdateAddsKeywordsToTheirShards(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	doc, err := New("blog", "doc-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Update(ctx, doc, "alpha beta", "text", false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(doc.Keywords) == 0 {
		t.Fatal("expected keywords from extraction")
	}

	for _, kw := range doc.Keywords {
		shard := shardFor(t, kv, "blog", "doc-1", kw.Word)
		score, present := shardHasDoc(shard, "doc-1")
		if !present {
			t.Fatalf("keyword %q: doc-1 missing from its shard", kw.Word)
		}
		if score != kw.Score {
			t.Fatalf("keyword %q: shard score = %v, want %v", kw.Word, score, kw.Score)
		}
	}
}

func TestUpdateRemovesDroppedKeywordsFromTheirShards(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	doc, err := New("blog", "doc-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Update(ctx, doc, "alpha beta", "text", false); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	firstWords := make([]string, len(doc.Keywords))
	for i, kw := range doc.Keywords {
		firstWords[i] = kw.Word
	}
	if len(firstWords) == 0 {
		t.Fatal("expected keywords from first update")
	}

	if _, err := store.Update(ctx, doc, "gamma delta", "text", false); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	newWords := make(map[string]bool, len(doc.Keywords))
	for _, kw := range doc.Keywords {
		newWords[kw.Word] = true
	}

	for _, word := range firstWords {
		if newWords[word] {
			continue
		}
		shard := shardFor(t, kv, "blog", "doc-1", word)
		if _, present := shardHasDoc(shard, "doc-1"); present {
			t.Fatalf("keyword %q: doc-1 still present in shard after it dropped out of the document", word)
		}
	}
}

func TestUpdateAddIsIdempotentOnSurvivingKeyword(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore()

	doc, err := New("blog", "doc-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Update(ctx, doc, "alpha beta", "text", false); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	if len(doc.Keywords) == 0 {
		t.Fatal("expected keywords from extraction")
	}
	word := doc.Keywords[0].Word
	shard := shardFor(t, kv, "blog", "doc-1", word)
	countBefore := len(shard.Docs)

	if _, err := store.Update(ctx, doc, "alpha beta", "text", false); err != nil {
		t.Fatalf("second Update: %v", err)
	}

	shard = shardFor(t, kv, "blog", "doc-1", word)
	if len(shard.Docs) != countBefore {
		t.Fatalf("shard for %q grew from %d to %d entries across a re-update with no new doc", word, countBefore, len(shard.Docs))
	}
}

func TestDeleteRemovesDocumentOnly(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	doc, err := New("blog", "doc-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Update(ctx, doc, "alpha beta gamma", "text", false); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := store.Delete(ctx, "blog", "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := store.Get(ctx, "blog", "doc-1"); err == nil {
		t.Fatal("expected Get to fail after Delete")
	}
}
