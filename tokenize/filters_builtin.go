// Built-in filter implementations for the three names the default params
// list references (spec section 6: `filters: ["normalizer", "stopwords",
// "stemmer"]`), grounded on original_source/src/core/filters_builtin.c. The
// FilterPipeline contract itself stays open to caller-supplied filters
// (see filter.go); these three just give the default names a body.
package tokenize

import (
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"nxsearch/container/strbuf"
)

// normalizerFilter NFC-normalizes and locale-aware-lowercases a token, the
// idiomatic Go stand-in for filters_builtin.c's case-fold + Unicode
// normalization step.
type normalizerFilter struct {
	caser cases.Caser
}

// NewNormalizerFilter builds the normalizer filter for the given ISO-639-1
// language tag, falling back to English on an unrecognized tag.
func NewNormalizerFilter(lang string) Filter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &normalizerFilter{caser: cases.Lower(tag)}
}

func (f *normalizerFilter) Run(buf *strbuf.StringBuffer) (Action, error) {
	normalized := norm.NFC.String(buf.String())
	buf.Set(f.caser.String(normalized))
	return Mutation, nil
}

// stopwordsFilter discards tokens found in a fixed set.
type stopwordsFilter struct {
	words map[string]struct{}
}

// NewStopwordsFilter builds a stopwords filter over the given word set.
func NewStopwordsFilter(words map[string]struct{}) Filter {
	return &stopwordsFilter{words: words}
}

func (f *stopwordsFilter) Run(buf *strbuf.StringBuffer) (Action, error) {
	if _, stop := f.words[buf.String()]; stop {
		return Discard, nil
	}
	return Mutation, nil
}

// stemmerFilter reduces a token to its Porter-stem form.
type stemmerFilter struct{}

// NewStemmerFilter builds the Porter-stemmer filter.
func NewStemmerFilter() Filter {
	return &stemmerFilter{}
}

func (f *stemmerFilter) Run(buf *strbuf.StringBuffer) (Action, error) {
	stemmed := porterstemmer.StemString(buf.String())
	buf.Set(stemmed)
	return Mutation, nil
}

// englishStopwords is a short, common stopword list; completeness is
// explicitly not a goal here (query and add text both go through the same
// list, so recall is unaffected by which words it contains — only the
// index's size is).
var englishStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
	"to", "was", "were", "will", "with",
}

func stopwordsFor(lang string) map[string]struct{} {
	set := make(map[string]struct{}, len(englishStopwords))
	if strings.HasPrefix(strings.ToLower(lang), "en") || lang == "" {
		for _, w := range englishStopwords {
			set[w] = struct{}{}
		}
	}
	return set
}
