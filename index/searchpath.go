package index

import (
	"fmt"
	"math"

	"nxsearch/container/heap2"
	"nxsearch/query"
	"nxsearch/rank"
	"nxsearch/store"
	"nxsearch/tokenize"
)

// maxExprDepth bounds expression-tree recursion (spec section 4.6 step 4);
// exceeding it is an NXS_ERR_LIMIT condition.
const maxExprDepth = 100

// ErrLimit is returned when expression-tree recursion exceeds maxExprDepth.
var ErrLimit = fmt.Errorf("index: search: expression nesting exceeds %d", maxExprDepth)

// SearchParams are the recognized `search` params (spec section 4.6/6).
type SearchParams struct {
	Limit      uint
	Algo       string
	FuzzyMatch bool
}

// DefaultSearchParams returns limit=1000, algo=<index config>,
// fuzzymatch=true.
func DefaultSearchParams(idx *Index) SearchParams {
	return SearchParams{Limit: 1000, Algo: idx.Params.Algo, FuzzyMatch: true}
}

// Search evaluates expr against the index and returns the top params.Limit
// scoring documents (spec section 2 "Control flow for search" and section
// 4.6).
func (idx *Index) Search(params SearchParams, expr *query.Expr) (*Response, error) {
	if params.Limit == 0 {
		return nil, fmt.Errorf("index: search: limit must be >= 1")
	}
	algo := rank.Algo(params.Algo)
	if algo != rank.TFIDF && algo != rank.BM25 {
		return nil, fmt.Errorf("index: search: unknown algo %q", params.Algo)
	}

	if err := idx.Terms.Sync(); err != nil {
		return nil, err
	}
	if err := idx.Dtmap.Sync(true); err != nil {
		return nil, err
	}

	if expr == nil || expr.IsEmpty() {
		return &Response{}, nil
	}

	flags := tokenize.Trim
	if params.FuzzyMatch {
		flags |= tokenize.FuzzyMatch
	}

	leaves := expr.Leaves()
	leafTerm := make(map[*query.Expr]*store.Term, len(leaves))
	resolvedAny := false

	for _, leaf := range leaves {
		ts, err := idx.tok.Tokenize([]byte(leaf.Value))
		if err != nil {
			return nil, err
		}
		if err := ts.Resolve(idx.Terms.Dir, idx.GlobalCount, flags); err != nil {
			return nil, err
		}
		if ts.Count() == 0 {
			continue
		}
		if tok := ts.Tokens()[0]; tok.ResolvedTerm != nil {
			leafTerm[leaf] = tok.ResolvedTerm
			resolvedAny = true
		}
	}

	if !resolvedAny {
		return &Response{}, nil
	}

	bitmap, err := evalExpr(expr, leafTerm, 0)
	if err != nil {
		return nil, err
	}

	scores := make(map[uint64]float64, bitmap.Cardinality())
	bitmap.ForEach(func(docID32 uint32) bool {
		docID := uint64(docID32)
		doc, ok := idx.Dtmap.Dir.LookupByID(docID)
		if !ok {
			return true
		}
		var total float64
		for _, term := range leafTerm {
			if term == nil || !term.Bitmap.Contains(docID32) {
				continue
			}
			tf := idx.Dtmap.TermFrequency(doc, term.ID)
			s := rank.Score(algo, rank.Stats{
				TF:  tf,
				DF:  uint64(term.Bitmap.Cardinality()),
				N:   idx.DocCount(),
				DL:  uint64(idx.Dtmap.DocLen(doc)),
				ADL: idx.AverageDocLen(),
			})
			if !math.IsNaN(s) && s >= 0 {
				total += s
			}
		}
		scores[docID] = total
		return true
	})

	h := heap2.New(int(params.Limit), func(a, b Hit) bool { return a.Score < b.Score })
	for docID, score := range scores {
		h.Add(Hit{DocID: docID, Score: score})
	}

	return &Response{hits: h.Sort()}, nil
}

// evalExpr walks expr, combining Term.doc_bitmap via AND/OR/NOT, per spec
// section 4.6 step 4.
func evalExpr(e *query.Expr, leafTerm map[*query.Expr]*store.Term, depth int) (*store.DocBitmap, error) {
	if depth > maxExprDepth {
		return nil, ErrLimit
	}

	switch e.Type {
	case query.Leaf:
		term, ok := leafTerm[e]
		if !ok || term == nil {
			return store.NewDocBitmap(), nil
		}
		return term.Bitmap.Clone(), nil

	case query.And:
		if len(e.Children) == 0 {
			return store.NewDocBitmap(), nil
		}
		result, err := evalExpr(e.Children[0], leafTerm, depth+1)
		if err != nil {
			return nil, err
		}
		for _, c := range e.Children[1:] {
			next, err := evalExpr(c, leafTerm, depth+1)
			if err != nil {
				return nil, err
			}
			result = result.Intersect(next)
		}
		return result, nil

	case query.Or:
		result := store.NewDocBitmap()
		for _, c := range e.Children {
			next, err := evalExpr(c, leafTerm, depth+1)
			if err != nil {
				return nil, err
			}
			result = result.Union(next)
		}
		return result, nil

	case query.Not:
		if len(e.Children) == 0 {
			return store.NewDocBitmap(), nil
		}
		result, err := evalExpr(e.Children[0], leafTerm, depth+1)
		if err != nil {
			return nil, err
		}
		for _, c := range e.Children[1:] {
			next, err := evalExpr(c, leafTerm, depth+1)
			if err != nil {
				return nil, err
			}
			result = result.Difference(next)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("index: search: unknown expression node type %d", e.Type)
	}
}
