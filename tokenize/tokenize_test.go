package tokenize

import "testing"

func TestTokenizeAllWhitespaceIsEmpty(t *testing.T) {
	tz := NewTokenizer(NewPipeline())
	ts, err := tz.Tokenize([]byte("   \t\n  "))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if ts.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", ts.Count())
	}
}

func TestTokenizeSingleToken(t *testing.T) {
	tz := NewTokenizer(NewPipeline())
	ts, err := tz.Tokenize([]byte("hello"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if ts.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", ts.Count())
	}
	tok := ts.Tokens()[0]
	if tok.Count != 1 {
		t.Fatalf("token count = %d, want 1", tok.Count)
	}
	if ts.Seen() != 1 {
		t.Fatalf("Seen() = %d, want 1", ts.Seen())
	}
}

func TestTokenizeRepeatedWordIncrementsCount(t *testing.T) {
	tz := NewTokenizer(NewPipeline())
	ts, err := tz.Tokenize([]byte("dog dog dog cat"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if ts.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", ts.Count())
	}
	if ts.Seen() != 4 {
		t.Fatalf("Seen() = %d, want 4", ts.Seen())
	}
	for _, tok := range ts.Tokens() {
		if tok.Value == "dog" && tok.Count != 3 {
			t.Fatalf("dog count = %d, want 3", tok.Count)
		}
	}
}

func TestNormalizerStopwordsPipelineLowercasesAndDropsStopwords(t *testing.T) {
	registry := NewRegistry("en")
	pipeline, err := registry.Build([]string{"normalizer", "stopwords"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tz := NewTokenizer(pipeline)

	ts, err := tz.Tokenize([]byte("The Quick Fox"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	var values []string
	for _, tok := range ts.Tokens() {
		values = append(values, tok.Value)
	}
	want := map[string]bool{"quick": true, "fox": true}
	if len(values) != len(want) {
		t.Fatalf("tokens = %v, want 2 tokens (the dropped as a stopword)", values)
	}
	for _, v := range values {
		if !want[v] {
			t.Errorf("unexpected token %q", v)
		}
	}
}

func TestUnknownFilterNameFails(t *testing.T) {
	registry := NewRegistry("en")
	if _, err := registry.Build([]string{"nonexistent"}); err == nil {
		t.Fatal("expected an error for an unknown filter name")
	}
}
