package tokenize

import (
	"fmt"

	"nxsearch/container/strbuf"
)

// Action is the outcome a Filter reports for one token buffer (spec section
// 4.5: "run(filter, &mut buf) -> { MUTATION, DISCARD, ERROR }").
type Action int

const (
	// Mutation means buf now holds the token's (possibly unchanged) value
	// and the pipeline should continue to the next filter.
	Mutation Action = iota
	// Discard means the token should be dropped entirely.
	Discard
	// Error aborts the whole tokenization operation.
	Error
)

// Filter is the external-collaborator contract the core consumes: a
// function over a mutable string buffer. Language bindings and scripted
// user filters implement this directly; nxsearch additionally ships three
// named built-ins (see filters_builtin.go).
type Filter interface {
	Run(buf *strbuf.StringBuffer) (Action, error)
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(buf *strbuf.StringBuffer) (Action, error)

// Run calls f.
func (f FilterFunc) Run(buf *strbuf.StringBuffer) (Action, error) {
	return f(buf)
}

// Pipeline runs a fixed, ordered chain of filters over one token buffer.
type Pipeline struct {
	filters []Filter
}

// NewPipeline builds a Pipeline from filters, run in order.
func NewPipeline(filters ...Filter) *Pipeline {
	return &Pipeline{filters: filters}
}

// Run passes buf through every filter in order, stopping early on Discard
// or Error.
func (p *Pipeline) Run(buf *strbuf.StringBuffer) (Action, error) {
	for _, f := range p.filters {
		action, err := f.Run(buf)
		if err != nil {
			return Error, err
		}
		switch action {
		case Discard:
			return Discard, nil
		case Error:
			return Error, fmt.Errorf("tokenize: filter reported an error")
		}
	}
	return Mutation, nil
}

// Registry maps filter names (as used in the `filters` param, spec section
// 6) to Filter implementations.
type Registry struct {
	byName map[string]Filter
}

// NewRegistry creates a Registry pre-populated with the three built-in
// filters named in the default params: normalizer, stopwords, stemmer.
func NewRegistry(lang string) *Registry {
	r := &Registry{byName: make(map[string]Filter)}
	r.Register("normalizer", NewNormalizerFilter(lang))
	r.Register("stopwords", NewStopwordsFilter(stopwordsFor(lang)))
	r.Register("stemmer", NewStemmerFilter())
	return r
}

// Register adds or replaces a named filter, letting a caller-supplied
// (language-binding-hosted) filter sit alongside the built-ins.
func (r *Registry) Register(name string, f Filter) {
	r.byName[name] = f
}

// Build resolves a list of filter names into a Pipeline, in order.
func (r *Registry) Build(names []string) (*Pipeline, error) {
	filters := make([]Filter, 0, len(names))
	for _, name := range names {
		f, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("tokenize: unknown filter %q", name)
		}
		filters = append(filters, f)
	}
	return NewPipeline(filters...), nil
}
