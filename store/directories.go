package store

import "nxsearch/fuzzy"

// TermDirectory is the in-memory mirror of every live term: value→Term and
// id→Term lookups, plus a BK-tree for approximate value lookup. Grounded on
// the teacher's Segment.Terms map (weaviate/storage/storage.go), generalized
// from a read-only map built once from JSON into an incrementally-grown
// directory backed by TermsStore.append/sync.
type TermDirectory struct {
	byValue map[string]*Term
	byID    map[uint32]*Term
	order   []*Term
	tree    *fuzzy.Tree[*Term]
}

// NewTermDirectory creates an empty TermDirectory.
func NewTermDirectory() *TermDirectory {
	d := &TermDirectory{
		byValue: make(map[string]*Term),
		byID:    make(map[uint32]*Term),
	}
	d.tree = fuzzy.New(func(a, b *Term) int {
		return fuzzy.Levenshtein(a.Value, b.Value)
	})
	return d
}

// Insert adds term to the directory. If a term with the same value already
// exists, it is left unchanged and returned instead.
func (d *TermDirectory) Insert(term *Term) *Term {
	if existing, ok := d.byValue[term.Value]; ok {
		return existing
	}
	d.byValue[term.Value] = term
	d.byID[term.ID] = term
	d.order = append(d.order, term)
	d.tree.Insert(term)
	return term
}

// LookupByValue returns the term with the given exact value, if any.
func (d *TermDirectory) LookupByValue(value string) (*Term, bool) {
	t, ok := d.byValue[value]
	return t, ok
}

// LookupByID returns the term with the given id, if any.
func (d *TermDirectory) LookupByID(id uint32) (*Term, bool) {
	t, ok := d.byID[id]
	return t, ok
}

// All returns every term in insertion order, used by iteration/teardown.
func (d *TermDirectory) All() []*Term {
	return d.order
}

// Len returns the number of terms in the directory.
func (d *TermDirectory) Len() int {
	return len(d.order)
}

// FuzzySearch looks up value approximately, tolerating up to
// fuzzy.DistTolerance Levenshtein edits. Among the candidates it returns the
// one with the maximum value of globalCount; ties (including the
// degenerate all-zero case) are broken by keeping the *last* candidate
// encountered during the BK-tree's traversal order — this is the resolution
// documented for the source's ambiguous tie-breaking behavior (design note
// in section 9: "return the candidate with maximum global count, ties
// broken by iteration order; if all counts are zero, return the last
// encountered").
func (d *TermDirectory) FuzzySearch(value string, globalCount func(*Term) uint64) (*Term, bool) {
	probe := &Term{Value: value}
	candidates := d.tree.Search(probe, fuzzy.DistTolerance)
	if len(candidates) == 0 {
		return nil, false
	}

	var best *Term
	var bestCount uint64
	for _, c := range candidates {
		count := globalCount(c)
		if best == nil || count >= bestCount {
			best = c
			bestCount = count
		}
	}
	return best, true
}

// DocDirectory is the in-memory mirror of every live document: doc_id →
// Doc{offset}.
type DocDirectory struct {
	byID map[uint64]*Doc
}

// NewDocDirectory creates an empty DocDirectory.
func NewDocDirectory() *DocDirectory {
	return &DocDirectory{byID: make(map[uint64]*Doc)}
}

// Insert adds or replaces the Doc entry for doc.ID.
func (d *DocDirectory) Insert(doc *Doc) {
	d.byID[doc.ID] = doc
}

// LookupByID returns the Doc with the given id, if live.
func (d *DocDirectory) LookupByID(id uint64) (*Doc, bool) {
	doc, ok := d.byID[id]
	return doc, ok
}

// Remove destroys the in-memory Doc entry for id, if present.
func (d *DocDirectory) Remove(id uint64) {
	delete(d.byID, id)
}

// Len returns the number of live documents.
func (d *DocDirectory) Len() int {
	return len(d.byID)
}
