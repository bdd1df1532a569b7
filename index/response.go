package index

import "encoding/json"

// Hit is one scored document in a Response.
type Hit struct {
	DocID uint64
	Score float64
}

// Response is the outcome of a search: an ordered list of (doc_id, score)
// pairs, highest score first (spec section 4.6 step 7 / section 6).
type Response struct {
	hits []Hit
}

// Count returns the number of hits.
func (r *Response) Count() int {
	if r == nil {
		return 0
	}
	return len(r.hits)
}

// Hits returns every hit, highest score first. Ties are in arbitrary order
// (spec section 9, "top-K with ties").
func (r *Response) Hits() []Hit {
	if r == nil {
		return nil
	}
	return r.hits
}

type jsonHit struct {
	DocID uint64  `json:"doc_id"`
	Score float64 `json:"score"`
}

// ToJSON serializes the response as a JSON array of {doc_id, score}.
func (r *Response) ToJSON() ([]byte, error) {
	hits := r.Hits()
	out := make([]jsonHit, len(hits))
	for i, h := range hits {
		out[i] = jsonHit{DocID: h.DocID, Score: h.Score}
	}
	return json.Marshal(out)
}
