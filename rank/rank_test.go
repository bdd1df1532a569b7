package rank

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TF-IDF of a term appearing once in one doc among two docs (the other
// without it) equals log(2)*(log(2/1)+1) = log(2)*(log(2)+1) (spec
// section 8, "Ranker" property).
func TestTFIDFWorkedExample(t *testing.T) {
	got := Score(TFIDF, Stats{TF: 1, DF: 1, N: 2})
	want := math.Log(2) * (math.Log(2) + 1)
	if !almostEqual(got, want) {
		t.Fatalf("TF-IDF = %v, want %v", got, want)
	}
}

func TestTFIDFNaNOnAbsentTerm(t *testing.T) {
	got := Score(TFIDF, Stats{TF: -1, DF: 1, N: 2})
	if !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
}

func TestBM25NaNOnZeroADL(t *testing.T) {
	got := Score(BM25, Stats{TF: 1, DF: 1, N: 2, DL: 3, ADL: 0})
	if !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
}

// BM25 saturates with repeated term frequency where TF-IDF keeps growing;
// this is a weaker, single-doc check of that shape rather than the full
// multi-doc corpus scenario from spec section 8 scenario 4.
func TestBM25SaturatesFasterThanTFIDF(t *testing.T) {
	lowTF := Stats{TF: 2, DF: 1, N: 3, DL: 10, ADL: 10}
	highTF := Stats{TF: 20, DF: 1, N: 3, DL: 10, ADL: 10}

	bm25Low := Score(BM25, lowTF)
	bm25High := Score(BM25, highTF)
	tfidfLow := Score(TFIDF, lowTF)
	tfidfHigh := Score(TFIDF, highTF)

	bm25Ratio := bm25High / bm25Low
	tfidfRatio := tfidfHigh / tfidfLow

	if bm25Ratio >= tfidfRatio {
		t.Fatalf("expected BM25 growth ratio (%v) < TF-IDF growth ratio (%v)", bm25Ratio, tfidfRatio)
	}
}

func TestBM25LengthPenalizesLongerDocs(t *testing.T) {
	short := Stats{TF: 3, DF: 1, N: 3, DL: 3, ADL: 26.0 / 3.0}
	long := Stats{TF: 3, DF: 1, N: 3, DL: 20, ADL: 26.0 / 3.0}

	if Score(BM25, short) <= Score(BM25, long) {
		t.Fatal("expected shorter doc to score higher under BM25 for equal raw tf")
	}
	if !almostEqual(Score(TFIDF, short), Score(TFIDF, long)) {
		t.Fatal("expected TF-IDF to be indifferent to document length")
	}
}
