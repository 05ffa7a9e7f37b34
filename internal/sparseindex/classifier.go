package sparseindex

import "strings"

// rerankKeywords is the fixed keyword set from spec.md §4.7.1. A query must
// contain at least one of these (case-insensitive substring match) before
// reranking is even considered.
var rerankKeywords = []string{
	"parameter", "docstring", "logic", "method", "class", "function",
	"constant", "attribute", "variable", "field", "property", "decorator",
}

// shouldRerank is the classifier contract of spec.md §4.7.1: a pure function
// of the query and the shape of the BM25 score distribution. It never
// inspects results beyond the three summary statistics passed in.
func shouldRerank(query string, bm25TopScore, bm25ScoreGap float64, resultCount int) bool {
	if resultCount < 1 {
		return false
	}
	if !containsKeyword(query) {
		return false
	}
	if bm25TopScore >= 25.0 {
		return false
	}
	if bm25ScoreGap >= 5.0 {
		return false
	}
	severe := bm25TopScore < 20.0 || (bm25TopScore < 25.0 && bm25ScoreGap < 3.0)
	return severe
}

func containsKeyword(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range rerankKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
