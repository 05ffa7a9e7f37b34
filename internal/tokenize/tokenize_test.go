package tokenize

import (
	"reflect"
	"testing"
)

func TestTokenizeCamelAndSnakeCase(t *testing.T) {
	tok := WithDefaultStopWords()
	got := tok.Tokenize("AuthServiceFactory parse_ast_node HTTP2Request")
	want := []string{"auth", "servic", "factori", "pars", "ast", "node", "http", "2", "request"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRemovesStopWordsAndStems(t *testing.T) {
	tok := New(map[string]struct{}{"the": {}, "and": {}})
	got := tok.Tokenize("Running the tests and reading codes")
	want := []string{"run", "test", "read", "code"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizesUnicodeAndPunctuation(t *testing.T) {
	tok := WithDefaultStopWords()
	got := tok.Tokenize("Café-util — sanitize_input()")
	want := []string{"cafe", "util", "sanit", "input"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFiltersEmptyResults(t *testing.T) {
	tok := New(map[string]struct{}{"the": {}, "and": {}, "of": {}})
	got := tok.Tokenize("THE and OF")
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestTokenizeWithOffsetsMonotonic(t *testing.T) {
	tok := WithDefaultStopWords()
	toks := tok.TokenizeWithOffsets("parseHTTP2Request")
	for i := 1; i < len(toks); i++ {
		if toks[i-1].To > toks[i].From {
			t.Fatalf("offsets not monotonic at %d: %+v", i, toks)
		}
	}
}

func TestTokenizeIdempotentUnderJoin(t *testing.T) {
	tok := WithDefaultStopWords()
	input := "GraphBuilder::from_repo"
	first := tok.Tokenize(input)
	rejoined := ""
	for i, w := range first {
		if i > 0 {
			rejoined += " "
		}
		rejoined += w
	}
	second := tok.Tokenize(rejoined)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("tokenize not idempotent: %v vs %v", first, second)
	}
}
