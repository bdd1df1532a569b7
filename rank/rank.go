// Package rank implements the two scoring functions the search path sums
// per matching document: TF-IDF and BM25. Grounded on the teacher's
// engine.go scoring loop (weaviate/engine/engine.go, which computes a
// TF-IDF-shaped score inline over its BlockHeap) and the exact formulas
// carried over unchanged from the distilled specification.
package rank

import "math"

// Algo names a ranking algorithm, matching the index/search "algo" param.
type Algo string

const (
	TFIDF Algo = "TF-IDF"
	BM25  Algo = "BM25"
)

// BM25 tuning constants (spec section 4.7).
const (
	bm25K = 1.2
	bm25B = 0.75
)

// Stats bundles the inputs the Ranker reads for a single (term, doc) pair,
// decoupling rank from store's concrete Term/Doc/Index types.
type Stats struct {
	// TF is the term's count of occurrences in the doc (from the doc
	// block's sorted tuple array). Negative means "absent" — the caller
	// found this by a failed binary search and should skip the term
	// entirely, as the doc was concurrently modified.
	TF int64
	// DF is the term's global document frequency, |Term.doc_bitmap|.
	DF uint64
	// N is the index's total live document count.
	N uint64
	// DL is the doc's length in tokens (with repetition).
	DL uint64
	// ADL is the index's average document length, TokenCount/DocCount.
	ADL float64
}

// Score computes the score of a single term against a single document
// under algo. A NaN result means "contributes nothing" (race conditions
// the caller observed as tf<=0, or a degenerate adl=0 under BM25); callers
// must check math.IsNaN before summing.
func Score(algo Algo, s Stats) float64 {
	switch algo {
	case BM25:
		return scoreBM25(s)
	default:
		return scoreTFIDF(s)
	}
}

// scoreTFIDF implements log(tf+1) * (log(N/df) + 1).
func scoreTFIDF(s Stats) float64 {
	if s.TF <= 0 {
		return math.NaN()
	}
	tf := math.Log(float64(s.TF) + 1)
	idf := math.Log(float64(s.N)/float64(s.DF)) + 1
	return tf * idf
}

// scoreBM25 implements the k=1.2, b=0.75 formula from spec section 4.7:
//
//	tf'    = log(tf+1)
//	denom  = tf' + k * (1 - b + b * dl / adl)
//	idf    = log(((N - df + 0.5) / (df + 0.5)) + 1)
//	score  = (tf' / denom) * idf
func scoreBM25(s Stats) float64 {
	if s.TF <= 0 || s.ADL == 0 {
		return math.NaN()
	}
	tfPrime := math.Log(float64(s.TF) + 1)
	denom := tfPrime + bm25K*(1-bm25B+bm25B*float64(s.DL)/s.ADL)
	idf := math.Log((float64(s.N)-float64(s.DF)+0.5)/(float64(s.DF)+0.5) + 1)
	return (tfPrime / denom) * idf
}
