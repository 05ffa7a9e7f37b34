// Package tokenize implements the code-aware lexical analyzer shared by the
// name index and the BM25 index: Unicode folding, identifier splitting, and
// English stemming over source identifiers and free text.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Token is a stemmed, lowercased token plus its byte offsets into the
// normalized form of the tokenizer's input (not the original string).
type Token struct {
	Text string
	From int
	To   int
}

// tokenInternal is the pre-lowercase, pre-stem identifier fragment produced
// by the splitting passes, before stop-word filtering and stemming.
type tokenInternal struct {
	text string
	from int
	to   int
}

// DefaultStopWords is the default English stop-word set.
var DefaultStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "this": {}, "to": {},
	"was": {}, "were": {}, "will": {}, "with": {}, "self": {}, "cls": {},
}

// Tokenizer produces stemmed, stop-word-filtered tokens from source text.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// New creates a Tokenizer with the given stop-word set. A nil or empty set
// means "use DefaultStopWords".
func New(stopWords map[string]struct{}) *Tokenizer {
	if len(stopWords) == 0 {
		return &Tokenizer{stopWords: DefaultStopWords}
	}
	normalized := make(map[string]struct{}, len(stopWords))
	for w := range stopWords {
		normalized[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopWords: normalized}
}

// WithDefaultStopWords creates a Tokenizer using DefaultStopWords.
func WithDefaultStopWords() *Tokenizer {
	return New(nil)
}

// Tokenize returns the stemmed token text only, in order.
func (t *Tokenizer) Tokenize(input string) []string {
	toks := t.TokenizeWithOffsets(input)
	out := make([]string, len(toks))
	for i, tk := range toks {
		out[i] = tk.Text
	}
	return out
}

// TokenizeWithOffsets returns tokens with byte offsets into the normalized
// text produced by normalize(input).
func (t *Tokenizer) TokenizeWithOffsets(input string) []Token {
	normalized := normalize(input)
	var out []Token
	for _, raw := range splitIdentifiers(normalized) {
		lower := strings.ToLower(raw.text)
		if lower == "" {
			continue
		}
		if _, stop := t.stopWords[lower]; stop {
			continue
		}
		stemmed := stem(lower)
		if stemmed == "" {
			continue
		}
		if _, stop := t.stopWords[stemmed]; stop {
			continue
		}
		out = append(out, Token{Text: stemmed, From: raw.from, To: raw.to})
	}
	return out
}

// normalize applies NFKD decomposition, strips combining marks, ASCII-folds,
// and maps whitespace/punctuation to single spaces, matching spec.md §4.1.
func normalize(input string) string {
	decomposed := norm.NFKD.String(input)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark, drop after decomposition
		}
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		case r < unicode.MaxASCII && (unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)):
			b.WriteByte(' ')
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		// non-ASCII runes outside the above cases are dropped.
		default:
		}
	}
	return b.String()
}

func splitIdentifiers(normalized string) []tokenInternal {
	var out []tokenInternal
	fragStart := -1
	for i, r := range normalized {
		if r == ' ' {
			if fragStart >= 0 {
				pushFragment(normalized, fragStart, i, &out)
				fragStart = -1
			}
			continue
		}
		if fragStart < 0 {
			fragStart = i
		}
	}
	if fragStart >= 0 {
		pushFragment(normalized, fragStart, len(normalized), &out)
	}
	return out
}

func pushFragment(normalized string, start, end int, out *[]tokenInternal) {
	if start >= end {
		return
	}
	partStart := start
	for i := start; i < end; i++ {
		c := normalized[i]
		if c == '_' || c == '-' {
			if partStart < i {
				splitCamel(normalized, partStart, i, out)
			}
			partStart = i + 1
		}
	}
	if partStart < end {
		splitCamel(normalized, partStart, end, out)
	}
}

func splitCamel(normalized string, start, end int, out *[]tokenInternal) {
	if start >= end {
		return
	}
	chars := []rune(normalized[start:end])
	// byte offset of each rune within [start,end)
	offsets := make([]int, len(chars)+1)
	pos := start
	for i, r := range chars {
		offsets[i] = pos
		pos += runeLen(r)
	}
	offsets[len(chars)] = end

	segStart := 0
	for i := 1; i < len(chars); i++ {
		prev := chars[i-1]
		curr := chars[i]
		var next rune = -1
		if i+1 < len(chars) {
			next = chars[i+1]
		}
		if isBoundary(prev, curr, next) {
			if i > segStart {
				pushIdentifier(normalized, offsets[segStart], offsets[i], out)
			}
			segStart = i
		}
	}
	if segStart < len(chars) {
		pushIdentifier(normalized, offsets[segStart], end, out)
	}
}

func pushIdentifier(normalized string, start, end int, out *[]tokenInternal) {
	if start >= end {
		return
	}
	*out = append(*out, tokenInternal{text: normalized[start:end], from: start, to: end})
}

func isBoundary(prev, curr rune, next rune) bool {
	prevDigit := unicode.IsDigit(prev)
	currDigit := unicode.IsDigit(curr)
	if prevDigit != currDigit {
		return true
	}
	if unicode.IsLower(prev) && unicode.IsUpper(curr) {
		return true
	}
	if unicode.IsUpper(prev) && unicode.IsUpper(curr) && next >= 0 && unicode.IsLower(next) {
		return true
	}
	return false
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
