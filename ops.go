package nxsearch

import (
	"strings"

	"nxsearch/index"
	"nxsearch/query"
)

// Add tokenizes text and appends it to idx under docID (spec section 6
// `add`). docID must be non-zero.
func (e *Engine) Add(idx *index.Index, docID uint64, text []byte) error {
	e.clear()
	if docID == 0 {
		return e.fail(INVALID, "doc id must be non-zero")
	}
	if docID > uint64(^uint32(0)) {
		return e.fail(INVALID, "doc id %d exceeds u32 range", docID)
	}
	if err := idx.Add(docID, text); err != nil {
		return e.fail(classifyOpErr(err), "%s", err)
	}
	return nil
}

// Remove deletes docID from idx (spec section 6 `remove`).
func (e *Engine) Remove(idx *index.Index, docID uint64) error {
	e.clear()
	if err := idx.Remove(docID); err != nil {
		return e.fail(classifyOpErr(err), "%s", err)
	}
	return nil
}

// Search evaluates expr against idx (spec section 6 `search`).
func (e *Engine) Search(idx *index.Index, params index.SearchParams, expr *query.Expr) (*index.Response, error) {
	e.clear()
	resp, err := idx.Search(params, expr)
	if err != nil {
		return nil, e.fail(classifyOpErr(err), "%s", err)
	}
	return resp, nil
}

// classifyOpErr is the add/remove/search counterpart to classifyIndexErr:
// package index also returns plain fmt.Errorf, classified here by the
// substrings its own error paths actually produce.
func classifyOpErr(err error) Code {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "already present"):
		return EXISTS
	case strings.Contains(msg, "not found"), strings.Contains(msg, "no such"):
		return MISSING
	case strings.Contains(msg, "nesting"), strings.Contains(msg, "exceeds"), strings.Contains(msg, "exhausted"), strings.Contains(msg, "65535"):
		return LIMIT
	case strings.Contains(msg, "unknown algo"), strings.Contains(msg, "limit must be"), strings.Contains(msg, "mutually exclusive"), strings.Contains(msg, "empty token set"), strings.Contains(msg, "must be non-zero"):
		return INVALID
	default:
		return SYSTEM
	}
}
