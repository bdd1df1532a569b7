// Package tokenize implements the text-to-TokenSet pipeline: splitting raw
// text on Unicode word boundaries, running each candidate through a
// FilterPipeline, and resolving the resulting tokens against a term
// directory. Grounded on original_source/src/core/filters_builtin.c for the
// default filter set and on spec section 4.5 for the resolve() contract;
// the teacher has no equivalent (its segments arrive pre-tokenized from
// JSON), so this package is new.
package tokenize

import (
	"fmt"

	"nxsearch/store"
)

// Token is a distinct token value seen during one tokenize/resolve
// operation, along with its occurrence count and (once resolved) the Term
// backing it.
type Token struct {
	Value        string
	Count        uint64
	ResolvedTerm *store.Term
}

// TokenSet is the per-operation ordered, deduplicated collection of tokens
// plus the staging sublist of not-yet-resolved ones (spec section 3).
type TokenSet struct {
	order   []*Token
	byValue map[string]*Token
	staging []*Token
	dataLen uint64
	seen    uint64
}

// New creates an empty TokenSet.
func New() *TokenSet {
	return &TokenSet{byValue: make(map[string]*Token)}
}

// Add records one more occurrence of value, creating a new Token on first
// sight and otherwise incrementing the existing one's count.
func (ts *TokenSet) Add(value string) {
	ts.seen++
	ts.dataLen += uint64(len(value))
	if t, ok := ts.byValue[value]; ok {
		t.Count++
		return
	}
	t := &Token{Value: value, Count: 1}
	ts.byValue[value] = t
	ts.order = append(ts.order, t)
}

// Tokens returns every distinct token in first-seen order.
func (ts *TokenSet) Tokens() []*Token {
	return ts.order
}

// Count returns the number of distinct token values (spec "count").
func (ts *TokenSet) Count() int {
	return len(ts.order)
}

// Seen returns the total number of Add calls, including repeats (spec
// "seen").
func (ts *TokenSet) Seen() uint64 {
	return ts.seen
}

// DataLen returns the sum of every added value's byte length (spec
// "data_len"), counting each repeat.
func (ts *TokenSet) DataLen() uint64 {
	return ts.dataLen
}

// Staging returns the tokens currently awaiting term creation.
func (ts *TokenSet) Staging() []*Token {
	return ts.staging
}

// StagedCount returns len(Staging()) (spec "staged").
func (ts *TokenSet) StagedCount() int {
	return len(ts.staging)
}

// Remove destroys tok, dropping it from the set entirely. Used by TRIM
// resolution so unresolved words don't force an empty AND branch.
func (ts *TokenSet) Remove(tok *Token) {
	delete(ts.byValue, tok.Value)
	for i, t := range ts.order {
		if t == tok {
			ts.order = append(ts.order[:i], ts.order[i+1:]...)
			return
		}
	}
}

// ResolveFlags controls TokenSet.Resolve's behavior for unmatched tokens.
type ResolveFlags uint8

const (
	// Stage moves an unmatched token to the staging list (add path).
	Stage ResolveFlags = 1 << iota
	// FuzzyMatch tries approximate lookup before giving up on a token.
	FuzzyMatch
	// Trim destroys an unmatched token instead of staging it (search
	// path).
	Trim
)

// Resolve looks up every not-yet-resolved token by value in dir, applying
// flags to whatever remains unmatched. Stage and Trim are mutually
// exclusive (spec section 4.5).
func (ts *TokenSet) Resolve(dir *store.TermDirectory, globalCount func(*store.Term) uint64, flags ResolveFlags) error {
	if flags&Stage != 0 && flags&Trim != 0 {
		return fmt.Errorf("tokenize: STAGE and TRIM are mutually exclusive")
	}

	ts.staging = ts.staging[:0]
	snapshot := append([]*Token(nil), ts.order...)

	for _, tok := range snapshot {
		if tok.ResolvedTerm != nil {
			continue
		}
		if term, ok := dir.LookupByValue(tok.Value); ok {
			tok.ResolvedTerm = term
			continue
		}
		if flags&FuzzyMatch != 0 {
			if term, ok := dir.FuzzySearch(tok.Value, globalCount); ok {
				tok.ResolvedTerm = term
				continue
			}
		}
		if flags&Stage != 0 {
			ts.staging = append(ts.staging, tok)
			continue
		}
		if flags&Trim != 0 {
			ts.Remove(tok)
		}
	}
	return nil
}
