// Package nxsearch is an embeddable full-text search engine: an Engine owns
// a base directory of named indexes, each backed by the append-only,
// memory-mapped stores in package store. This file hosts the engine-level
// operations and error model from spec section 6/7; the actual add/remove/
// search state machines live in package index.
package nxsearch

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"nxsearch/index"
)

// Code classifies an engine-level error (spec section 7).
type Code int

const (
	// SUCCESS is the zero value: no error latched.
	SUCCESS Code = iota
	// FATAL marks corruption not recoverable within the open index.
	FATAL
	// SYSTEM covers I/O, mmap, truncate, flock, and OOM failures.
	SYSTEM
	// INVALID covers bad caller input.
	INVALID
	// EXISTS marks an index or document already present.
	EXISTS
	// MISSING marks an index or document not present.
	MISSING
	// LIMIT marks a size or nesting limit being exceeded.
	LIMIT
)

func (c Code) String() string {
	switch c {
	case SUCCESS:
		return "SUCCESS"
	case FATAL:
		return "FATAL"
	case SYSTEM:
		return "SYSTEM"
	case INVALID:
		return "INVALID"
	case EXISTS:
		return "EXISTS"
	case MISSING:
		return "MISSING"
	case LIMIT:
		return "LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Error is an engine-level error: a Code plus the underlying message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("nxsearch: %s: %s", e.Code, e.Message)
}

// nameRe is the index-name validation pattern from spec section 6.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Engine owns a base directory of named indexes and latches the last error
// from any public call (spec section 7: "cleared at the start of each
// public call").
type Engine struct {
	baseDir string
	lastErr *Error
}

// OpenBase ensures <base_dir>/data exists and returns an Engine rooted
// there. If baseDir is empty, NXS_BASEDIR is consulted.
func OpenBase(baseDir string) (*Engine, error) {
	if baseDir == "" {
		baseDir = os.Getenv("NXS_BASEDIR")
	}
	if baseDir == "" {
		return nil, &Error{Code: INVALID, Message: "base dir must be set (pass explicitly or via NXS_BASEDIR)"}
	}
	if lvl := os.Getenv("NXS_LOG_LEVEL"); lvl != "" {
		log.Printf("nxsearch: log level %s requested (engine logs via stdlib log regardless)", lvl)
	}
	dataDir := baseDir + "/data"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, &Error{Code: SYSTEM, Message: err.Error()}
	}
	return &Engine{baseDir: dataDir}, nil
}

// LastError returns the error latched by the most recent public call, or
// nil if it succeeded.
func (e *Engine) LastError() *Error {
	return e.lastErr
}

func (e *Engine) fail(code Code, format string, args ...any) *Error {
	err := &Error{Code: code, Message: fmt.Sprintf(format, args...)}
	e.lastErr = err
	return err
}

func (e *Engine) clear() {
	e.lastErr = nil
}

func validateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("name %q must match %s", name, nameRe.String())
	}
	return nil
}

// CreateIndex creates and opens a new index named name with the given
// params.
func (e *Engine) CreateIndex(name string, params index.Params) (*index.Index, error) {
	e.clear()
	if err := validateName(name); err != nil {
		return nil, e.fail(INVALID, "%s", err)
	}
	idx, err := index.Create(e.baseDir, name, params)
	if err != nil {
		return nil, e.fail(classifyIndexErr(err), "%s", err)
	}
	return idx, nil
}

// OpenIndex opens an existing index named name.
func (e *Engine) OpenIndex(name string) (*index.Index, error) {
	e.clear()
	if err := validateName(name); err != nil {
		return nil, e.fail(INVALID, "%s", err)
	}
	idx, err := index.Open(e.baseDir, name)
	if err != nil {
		return nil, e.fail(classifyIndexErr(err), "%s", err)
	}
	return idx, nil
}

// DestroyIndex removes an index's on-disk state. The index must not be open
// in this process.
func (e *Engine) DestroyIndex(name string) error {
	e.clear()
	if err := validateName(name); err != nil {
		return e.fail(INVALID, "%s", err)
	}
	if err := index.Destroy(e.baseDir, name); err != nil {
		return e.fail(classifyIndexErr(err), "%s", err)
	}
	return nil
}

// CloseIndex releases idx's backing stores.
func (e *Engine) CloseIndex(idx *index.Index) error {
	e.clear()
	if err := idx.Close(); err != nil {
		return e.fail(SYSTEM, "%s", err)
	}
	return nil
}

// classifyIndexErr maps an opaque error from package index to an engine
// Code by the textual markers that package uses for "already exists" /
// "not found" — package index returns plain fmt.Errorf, so this is a
// best-effort classification rather than a typed-error match.
func classifyIndexErr(err error) Code {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "already exists"):
		return EXISTS
	case strings.Contains(msg, "not found"):
		return MISSING
	default:
		return SYSTEM
	}
}
