// Package index wires store, tokenize, and rank together into the
// add/remove/search state machine spec section 2 describes, generalizing
// the teacher's engine.MultiTermQuery control flow (which queried a single
// pre-built, read-only segment) into an index that is built up
// incrementally and shared across processes.
package index

import (
	"fmt"
	"os"
	"path/filepath"

	"nxsearch/store"
	"nxsearch/tokenize"
)

// Index is one open, named index: its backing stores, its configuration,
// and the tokenizer pipeline built from that configuration.
type Index struct {
	Name   string
	dir    string
	Params Params
	Terms  *store.TermsStore
	Dtmap  *store.DtmapStore
	tok    *tokenize.Tokenizer
}

// Create makes a new index named name in the directory baseDir/name,
// writing its params.db and backing files for the first time. It fails if
// the index directory already exists. baseDir is used as given; the Engine
// passes its <base>/data directory.
func Create(baseDir, name string, params Params) (*Index, error) {
	idxDir := filepath.Join(baseDir, name)
	if _, err := os.Stat(idxDir); err == nil {
		return nil, fmt.Errorf("index: %q already exists", name)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("index: stat %s: %w", idxDir, err)
	}
	if err := os.MkdirAll(idxDir, 0755); err != nil {
		return nil, fmt.Errorf("index: mkdir %s: %w", idxDir, err)
	}
	if err := saveParams(idxDir, params); err != nil {
		return nil, err
	}
	return open(idxDir, name, params)
}

// Open opens an existing index named name in the directory baseDir/name,
// loading its params.db.
func Open(baseDir, name string) (*Index, error) {
	idxDir := filepath.Join(baseDir, name)
	params, err := loadParams(idxDir)
	if err != nil {
		return nil, fmt.Errorf("index: %q not found: %w", name, err)
	}
	return open(idxDir, name, params)
}

// Destroy removes an index's on-disk directory entirely. The index must
// not be open in this process.
func Destroy(baseDir, name string) error {
	idxDir := filepath.Join(baseDir, name)
	if _, err := os.Stat(idxDir); os.IsNotExist(err) {
		return fmt.Errorf("index: %q not found", name)
	}
	if err := os.RemoveAll(idxDir); err != nil {
		return fmt.Errorf("index: destroy %q: %w", name, err)
	}
	return nil
}

func open(idxDir, name string, params Params) (*Index, error) {
	terms, err := store.OpenTermsStore(filepath.Join(idxDir, "nxsterms"))
	if err != nil {
		return nil, err
	}
	dtmap, err := store.OpenDtmapStore(filepath.Join(idxDir, "nxsdtmap"), terms)
	if err != nil {
		terms.Close()
		return nil, err
	}

	registry := tokenize.NewRegistry(params.Lang)
	pipeline, err := registry.Build(params.Filters)
	if err != nil {
		dtmap.Close()
		terms.Close()
		return nil, err
	}

	return &Index{
		Name:   name,
		dir:    idxDir,
		Params: params,
		Terms:  terms,
		Dtmap:  dtmap,
		tok:    tokenize.NewTokenizer(pipeline),
	}, nil
}

// Close releases both backing stores' mappings and file descriptors.
func (idx *Index) Close() error {
	dtmapErr := idx.Dtmap.Close()
	termsErr := idx.Terms.Close()
	if dtmapErr != nil {
		return dtmapErr
	}
	return termsErr
}

// GlobalCount reads a term's live global occurrence counter, used as the
// tie-breaking key for fuzzy lookup.
func (idx *Index) GlobalCount(t *store.Term) uint64 {
	return t.GlobalCount(idx.Terms)
}

// DocCount returns the index's current live document count.
func (idx *Index) DocCount() uint64 {
	return uint64(idx.Dtmap.DocCount())
}

// TokenCount returns the index's current total token count across live
// documents.
func (idx *Index) TokenCount() uint64 {
	return idx.Dtmap.TokenCount()
}

// AverageDocLen returns TokenCount/DocCount, or 0 if the index is empty.
func (idx *Index) AverageDocLen() float64 {
	n := idx.DocCount()
	if n == 0 {
		return 0
	}
	return float64(idx.TokenCount()) / float64(n)
}
