package tokenize

import (
	"bytes"
	"fmt"

	"github.com/blevesearch/segment"

	"nxsearch/container/strbuf"
)

// Tokenizer splits raw UTF-8 text into tokens by Unicode word boundaries
// (UAX #29), runs each candidate segment through a Pipeline, and
// accumulates survivors into a TokenSet (spec section 4.5). blevesearch's
// segment package is the idiomatic Go UAX #29 implementation — the direct
// analogue of the "host ICU-equivalent" the spec calls for.
type Tokenizer struct {
	pipeline *Pipeline
}

// NewTokenizer builds a Tokenizer that runs every candidate token through
// pipeline.
func NewTokenizer(pipeline *Pipeline) *Tokenizer {
	return &Tokenizer{pipeline: pipeline}
}

// Tokenize segments text and filters each segment through the pipeline,
// building a TokenSet from whatever survives.
func (tz *Tokenizer) Tokenize(text []byte) (*TokenSet, error) {
	ts := New()

	seg := segment.NewWordSegmenter(bytes.NewReader(text))
	for seg.Segment() {
		if seg.Type() == segment.None {
			continue
		}

		buf := strbuf.New(string(seg.Bytes()))
		action, err := tz.pipeline.Run(buf)
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		if action == Discard {
			continue
		}
		if buf.Len() == 0 {
			continue
		}
		ts.Add(buf.String())
	}
	if err := seg.Err(); err != nil {
		return nil, fmt.Errorf("tokenize: segmenting: %w", err)
	}

	return ts, nil
}
