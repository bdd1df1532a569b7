package store

import (
	"os"
	"path/filepath"
	"testing"
)

func openPair(t *testing.T) (*TermsStore, *DtmapStore, string) {
	t.Helper()
	dir := t.TempDir()
	terms, err := OpenTermsStore(filepath.Join(dir, "nxsterms"))
	if err != nil {
		t.Fatalf("OpenTermsStore: %v", err)
	}
	dtmap, err := OpenDtmapStore(filepath.Join(dir, "nxsdtmap"), terms)
	if err != nil {
		t.Fatalf("OpenDtmapStore: %v", err)
	}
	return terms, dtmap, dir
}

func addDoc(t *testing.T, terms *TermsStore, dtmap *DtmapStore, docID uint64, words []string) {
	t.Helper()

	counts := make(map[string]uint64)
	order := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := counts[w]; !ok {
			order = append(order, w)
		}
		counts[w]++
	}

	staged := make([]*StagedTerm, 0, len(order))
	tuples := make([]TermCount, 0, len(order))
	for _, w := range order {
		if existing, ok := terms.Dir.LookupByValue(w); ok {
			tuples = append(tuples, TermCount{TermID: existing.ID, Count: uint32(counts[w])})
			continue
		}
		staged = append(staged, &StagedTerm{Value: w, Count: counts[w]})
	}
	if len(staged) > 0 {
		if err := terms.Append(staged); err != nil {
			t.Fatalf("terms.Append: %v", err)
		}
		for _, st := range staged {
			tuples = append(tuples, TermCount{TermID: st.Resolved.ID, Count: uint32(st.Count)})
		}
	}

	if err := dtmap.Append(docID, tuples, uint32(len(words))); err != nil {
		t.Fatalf("dtmap.Append(%d): %v", docID, err)
	}
}

func TestAppendAndSearchBitmap(t *testing.T) {
	terms, dtmap, _ := openPair(t)

	addDoc(t, terms, dtmap, 1, []string{"the", "quick", "brown", "fox", "jumped", "over", "the", "lazy", "dog"})
	addDoc(t, terms, dtmap, 2, []string{"once", "upon", "a", "time", "there", "were", "three", "little", "foxes"})

	dogTerm, ok := terms.Dir.LookupByValue("dog")
	if !ok {
		t.Fatal("expected term 'dog' to exist")
	}
	if dogTerm.Bitmap.Cardinality() != 1 || !dogTerm.Bitmap.Contains(1) {
		t.Fatalf("dog bitmap = %v, want {1}", dogTerm.Bitmap.DocIDs())
	}

	if dtmap.DocCount() != 2 {
		t.Fatalf("doc_count = %d, want 2", dtmap.DocCount())
	}
	if dtmap.TokenCount() != 18 {
		t.Fatalf("token_count = %d, want 18", dtmap.TokenCount())
	}
}

func TestTermIDStableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nxsterms")

	terms1, err := OpenTermsStore(path)
	if err != nil {
		t.Fatalf("open 1: %v", err)
	}
	if err := terms1.Append([]*StagedTerm{{Value: "alpha", Count: 1}, {Value: "beta", Count: 1}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	alphaID := terms1.Dir.byValue["alpha"].ID
	if err := terms1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	terms2, err := OpenTermsStore(path)
	if err != nil {
		t.Fatalf("open 2: %v", err)
	}
	if err := terms2.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	got, ok := terms2.Dir.LookupByValue("alpha")
	if !ok {
		t.Fatal("alpha missing after reopen+sync")
	}
	if got.ID != alphaID {
		t.Fatalf("alpha id = %d, want %d", got.ID, alphaID)
	}
}

func TestRemoveVisibility(t *testing.T) {
	terms, dtmap, _ := openPair(t)

	for _, id := range []uint64{1, 2, 3} {
		addDoc(t, terms, dtmap, id, []string{"abc", "def", "ghi"})
	}

	if err := dtmap.Remove(2); err != nil {
		t.Fatalf("remove: %v", err)
	}

	defTerm, _ := terms.Dir.LookupByValue("def")
	if defTerm.Bitmap.Contains(2) {
		t.Fatal("doc 2 should no longer be in def's bitmap")
	}
	ids := defTerm.Bitmap.DocIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("def bitmap = %v, want [1 3]", ids)
	}

	if dtmap.DocCount() != 2 {
		t.Fatalf("doc_count = %d, want 2", dtmap.DocCount())
	}
	if dtmap.TokenCount() != 6 {
		t.Fatalf("token_count = %d, want 6", dtmap.TokenCount())
	}

	if _, ok := dtmap.Dir.LookupByID(2); ok {
		t.Fatal("doc 2 should be gone from the directory")
	}
}

func TestDoubleAddSameDocFails(t *testing.T) {
	terms, dtmap, _ := openPair(t)
	addDoc(t, terms, dtmap, 1, []string{"a", "b"})

	if err := dtmap.Append(1, nil, 0); err == nil {
		t.Fatal("expected error re-adding doc id 1")
	}
}

func TestFuzzySearchPrefersHigherCount(t *testing.T) {
	terms, dtmap, _ := openPair(t)
	addDoc(t, terms, dtmap, 1, []string{"color", "color", "gray"})
	addDoc(t, terms, dtmap, 2, []string{"colour"})

	found, ok := terms.Dir.FuzzySearch("color", func(t *Term) uint64 { return t.GlobalCount(terms) })
	if !ok {
		t.Fatal("expected a fuzzy match")
	}
	// "color" count=2, "colour" count=1: max count wins regardless of order.
	if found.Value != "color" {
		t.Fatalf("fuzzy match = %q, want %q", found.Value, "color")
	}
}

func TestCleanup(t *testing.T) {
	terms, dtmap, dir := openPair(t)
	addDoc(t, terms, dtmap, 1, []string{"x"})
	if err := dtmap.Close(); err != nil {
		t.Fatalf("dtmap close: %v", err)
	}
	if err := terms.Close(); err != nil {
		t.Fatalf("terms close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nxsterms")); err != nil {
		t.Fatalf("nxsterms missing: %v", err)
	}
}
