package sparseindex

import "context"

// Reranker is the feature-gated re-ranking seam described in spec.md §4.7
// step 5. It is consulted only when the classifier (§4.7.1) says the BM25
// score distribution looks ambiguous enough to be worth a second pass.
//
// Implementations are expected to be timeout-bounded and to swallow their
// own errors internally where practical; Rerank returning a non-nil error
// is still always treated as "keep the original list" by the caller.
type Reranker interface {
	Rerank(ctx context.Context, query string, results []SearchResult) ([]SearchResult, error)
}

// NoopReranker never reorders anything. It is the default when no reranker
// is configured, matching spec.md's description of the feature as optional
// and possibly absent entirely.
type NoopReranker struct{}

func (NoopReranker) Rerank(_ context.Context, _ string, results []SearchResult) ([]SearchResult, error) {
	return results, nil
}
