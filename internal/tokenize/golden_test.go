package tokenize

import (
	"testing"

	"codegraph/internal/testutil"
)

// TestGoldenOffsets pins TokenizeWithOffsets' byte-offset output against a
// fixture, since the offset arithmetic in splitCamel/pushFragment has no
// other direct regression coverage.
func TestGoldenOffsets(t *testing.T) {
	tok := WithDefaultStopWords()
	got := tok.TokenizeWithOffsets("parseHTTP2Request")
	testutil.CompareGolden(t, ".", "offsets_parseHTTP2Request", got)
}
