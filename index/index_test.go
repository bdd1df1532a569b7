package index

import (
	"strings"
	"testing"

	"nxsearch/query"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	dir := t.TempDir()
	idx, err := Create(dir, "test", DefaultParams())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func addText(t *testing.T, idx *Index, docID uint64, text string) {
	t.Helper()
	if err := idx.Add(docID, []byte(text)); err != nil {
		t.Fatalf("Add(%d): %v", docID, err)
	}
}

func hitFor(hits []Hit, docID uint64) (Hit, bool) {
	for _, h := range hits {
		if h.DocID == docID {
			return h, true
		}
	}
	return Hit{}, false
}

// Scenario 1/2 from spec section 8: fox/dog corpus.
func TestSearchFoxDogCorpus(t *testing.T) {
	idx := newTestIndex(t)
	addText(t, idx, 1, "The quick brown fox jumped over the lazy dog")
	addText(t, idx, 2, "Once upon a time there were three little foxes")

	resp, err := idx.Search(DefaultSearchParams(idx), query.Term("dog"))
	if err != nil {
		t.Fatalf("search dog: %v", err)
	}
	if resp.Count() != 1 || resp.Hits()[0].DocID != 1 {
		t.Fatalf("search dog = %+v, want just doc 1", resp.Hits())
	}

	resp, err = idx.Search(DefaultSearchParams(idx), query.Term("fox"))
	if err != nil {
		t.Fatalf("search fox: %v", err)
	}
	if resp.Count() != 2 {
		t.Fatalf("search fox = %+v, want 2 hits (fox stems to match foxes)", resp.Hits())
	}
	h1, ok1 := hitFor(resp.Hits(), 1)
	h2, ok2 := hitFor(resp.Hits(), 2)
	if !ok1 || !ok2 {
		t.Fatalf("expected both docs 1 and 2, got %+v", resp.Hits())
	}
	if diff := h1.Score - h2.Score; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected equal scores for fox, got %v vs %v", h1.Score, h2.Score)
	}
}

// Scenario 3: TF demonstration, doc with "cat" twice outranks doc with it
// once, under both algorithms.
func TestSearchTFDemonstration(t *testing.T) {
	for _, algo := range []string{"TF-IDF", "BM25"} {
		idx := newTestIndex(t)
		idx.Params.Algo = algo
		addText(t, idx, 1, "cat dog rat")
		addText(t, idx, 2, "cat cat dog")

		params := DefaultSearchParams(idx)
		params.Algo = algo
		resp, err := idx.Search(params, query.Term("cat"))
		if err != nil {
			t.Fatalf("%s: search: %v", algo, err)
		}
		h1, _ := hitFor(resp.Hits(), 1)
		h2, _ := hitFor(resp.Hits(), 2)
		if h2.Score <= h1.Score {
			t.Fatalf("%s: expected doc 2 to outscore doc 1, got %v vs %v", algo, h2.Score, h1.Score)
		}
	}
}

// Scenario 4: BM25 saturates term frequency, TF-IDF does not — so the gap
// between a doc with "aa" x20 and one with "aa" x10 is far smaller under
// BM25 than under TF-IDF.
func TestSearchBM25Saturation(t *testing.T) {
	build := func(t *testing.T, algo string) (float64, float64) {
		idx := newTestIndex(t)
		idx.Params.Algo = algo
		addText(t, idx, 1, strings.Repeat("aa ", 20))
		addText(t, idx, 2, strings.Repeat("aa ", 10)+strings.Repeat("bb ", 10))
		addText(t, idx, 3, "aa "+strings.Repeat("bb ", 19))

		params := DefaultSearchParams(idx)
		params.Algo = algo
		resp, err := idx.Search(params, query.Term("aa"))
		if err != nil {
			t.Fatalf("%s: search: %v", algo, err)
		}
		h1, _ := hitFor(resp.Hits(), 1)
		h2, _ := hitFor(resp.Hits(), 2)
		return h1.Score, h2.Score
	}

	tfidf1, tfidf2 := build(t, "TF-IDF")
	bm251, bm252 := build(t, "BM25")

	tfidfGap := tfidf1 - tfidf2
	bm25Gap := bm251 - bm252
	if bm25Gap <= 0 {
		t.Fatalf("expected doc 1 to still lead under BM25, gap = %v", bm25Gap)
	}
	if bm25Gap >= tfidfGap {
		t.Fatalf("expected BM25 gap (%v) to be much smaller than TF-IDF gap (%v)", bm25Gap, tfidfGap)
	}
}

// Scenario 5: length sensitivity. Three docs each contain "cats" the same
// (or similar) number of times but differ in total length; BM25 penalizes
// the longer document relative to TF-IDF.
func TestSearchLengthSensitivity(t *testing.T) {
	idx := newTestIndex(t)
	idx.Params.Algo = "BM25"
	addText(t, idx, 1, "cats cats cats "+strings.Repeat("filler ", 17))
	addText(t, idx, 2, "cats cats cats")
	addText(t, idx, 3, "cats cats filler")

	resp, err := idx.Search(DefaultSearchParams(idx), query.Term("cats"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	h1, _ := hitFor(resp.Hits(), 1)
	h2, _ := hitFor(resp.Hits(), 2)
	if h2.Score <= h1.Score {
		t.Fatalf("expected the shorter doc 2 to score higher under BM25, got %v vs %v", h2.Score, h1.Score)
	}
}

// Scenario 6: remove visibility end-to-end through the index layer.
func TestSearchAfterRemove(t *testing.T) {
	idx := newTestIndex(t)
	addText(t, idx, 1, "abc def ghi")
	addText(t, idx, 2, "abc def ghi")
	addText(t, idx, 3, "abc def ghi")

	if err := idx.Remove(2); err != nil {
		t.Fatalf("remove: %v", err)
	}

	resp, err := idx.Search(DefaultSearchParams(idx), query.Term("def"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Count() != 2 {
		t.Fatalf("expected 2 hits after remove, got %+v", resp.Hits())
	}
	if _, ok := hitFor(resp.Hits(), 2); ok {
		t.Fatal("removed doc 2 should not appear in results")
	}
	if idx.DocCount() != 2 {
		t.Fatalf("doc_count = %d, want 2", idx.DocCount())
	}
	if idx.TokenCount() != 6 {
		t.Fatalf("token_count = %d, want 6", idx.TokenCount())
	}
}

// "Search returns empty on no resolved terms" from spec section 7.
func TestSearchNoResolvedTermsReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t)
	addText(t, idx, 1, "abc def ghi")

	params := DefaultSearchParams(idx)
	params.FuzzyMatch = false
	resp, err := idx.Search(params, query.Term("zzz-nonexistent"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Count() != 0 {
		t.Fatalf("expected empty response, got %+v", resp.Hits())
	}
}

func TestAddRejectsZeroDocID(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Add(0, []byte("hello")); err == nil {
		t.Fatal("expected error for doc id 0")
	}
}

func TestAndOrNotExpressions(t *testing.T) {
	idx := newTestIndex(t)
	addText(t, idx, 1, "apple banana")
	addText(t, idx, 2, "apple cherry")
	addText(t, idx, 3, "banana cherry")

	resp, err := idx.Search(DefaultSearchParams(idx), query.NewAnd(query.Term("apple"), query.Term("banana")))
	if err != nil {
		t.Fatalf("AND search: %v", err)
	}
	if resp.Count() != 1 || resp.Hits()[0].DocID != 1 {
		t.Fatalf("AND apple,banana = %+v, want just doc 1", resp.Hits())
	}

	resp, err = idx.Search(DefaultSearchParams(idx), query.NewOr(query.Term("apple"), query.Term("banana")))
	if err != nil {
		t.Fatalf("OR search: %v", err)
	}
	if resp.Count() != 3 {
		t.Fatalf("OR apple,banana = %+v, want all 3 docs", resp.Hits())
	}

	resp, err = idx.Search(DefaultSearchParams(idx), query.NewNot(query.Term("apple"), query.Term("banana")))
	if err != nil {
		t.Fatalf("NOT search: %v", err)
	}
	if resp.Count() != 1 || resp.Hits()[0].DocID != 2 {
		t.Fatalf("apple NOT banana = %+v, want just doc 2", resp.Hits())
	}
}
