package index

import (
	"fmt"

	"nxsearch/store"
	"nxsearch/tokenize"
)

// Add tokenizes text, resolves tokens against the term directory (staging
// any not yet seen), appends newly-staged terms, then appends the document
// record — the add control flow from spec section 2.
func (idx *Index) Add(docID uint64, text []byte) error {
	if docID == 0 {
		return fmt.Errorf("index: doc id must be non-zero")
	}
	if docID > uint64(^uint32(0)) {
		return fmt.Errorf("index: doc id %d exceeds u32 range", docID)
	}

	ts, err := idx.tok.Tokenize(text)
	if err != nil {
		return err
	}
	if ts.Count() == 0 {
		return fmt.Errorf("index: doc %d produced an empty token set", docID)
	}

	if err := ts.Resolve(idx.Terms.Dir, idx.GlobalCount, tokenize.Stage); err != nil {
		return err
	}

	if ts.StagedCount() > 0 {
		staging := ts.Staging()
		staged := make([]*store.StagedTerm, len(staging))
		for i, tok := range staging {
			staged[i] = &store.StagedTerm{Value: tok.Value, Count: tok.Count}
		}
		if err := idx.Terms.Append(staged); err != nil {
			return err
		}
		for i, tok := range staging {
			tok.ResolvedTerm = staged[i].Resolved
		}
	}

	tuples := make([]store.TermCount, 0, ts.Count())
	for _, tok := range ts.Tokens() {
		if tok.ResolvedTerm == nil {
			return fmt.Errorf("index: internal error: token %q unresolved after append", tok.Value)
		}
		tuples = append(tuples, store.TermCount{TermID: tok.ResolvedTerm.ID, Count: uint32(tok.Count)})
	}

	return idx.Dtmap.Append(docID, tuples, uint32(ts.Seen()))
}
