// Package sparseindex implements the Sparse Index (C7): it orchestrates the
// Name Index (C5) and the BM25 Index (C6) over a frozen graph, merging their
// results into a single ranked, deduplicated list (spec.md §4.7).
package sparseindex

import (
	"context"
	"path/filepath"
	"time"

	"codegraph/internal/bm25index"
	"codegraph/internal/depgraph"
	"codegraph/internal/nameindex"
	"codegraph/internal/tokenize"
)

// SearchResult is the unified shape returned by SparseIndex.Search, spanning
// hits from the name index and the BM25 index alike (spec.md §6).
type SearchResult struct {
	EntityID     string
	Name         string
	Path         string
	Kind         string
	Score        float64
	MatchedTerms []string
}

// AnalyzerConfig configures the tokenizer shared by name-index normalization
// and BM25 document/query analysis.
type AnalyzerConfig struct {
	ExtraStopWords []string
}

func (c AnalyzerConfig) tokenizer() *tokenize.Tokenizer {
	if len(c.ExtraStopWords) == 0 {
		return tokenize.WithDefaultStopWords()
	}
	stopWords := make(map[string]struct{}, len(tokenize.DefaultStopWords)+len(c.ExtraStopWords))
	for w := range tokenize.DefaultStopWords {
		stopWords[w] = struct{}{}
	}
	for _, w := range c.ExtraStopWords {
		stopWords[w] = struct{}{}
	}
	return tokenize.New(stopWords)
}

// RerankerTimeout bounds how long the optional reranker is allowed to run
// before its result is discarded in favor of the original list (spec.md §5).
const RerankerTimeout = 3 * time.Second

// SparseIndex is the frozen, queryable union of C5 and C6 for one graph
// build. It is safe for concurrent Search calls (spec.md §5).
type SparseIndex struct {
	graph    *depgraph.Graph
	names    *nameindex.Index
	bm25w    *bm25index.Writer
	bm25r    *bm25index.Reader
	tok      *tokenize.Tokenizer
	reranker Reranker
}

// FromGraph builds C5 in memory over the graph's Class and Function nodes
// and C6 on disk under basePath/bm25, then returns the combined SparseIndex
// (spec.md §4.7 "Build").
func FromGraph(ctx context.Context, graph *depgraph.Graph, basePath string, cfg AnalyzerConfig) (*SparseIndex, error) {
	tok := cfg.tokenizer()

	nb := nameindex.NewBuilder()
	for _, idx := range graph.Nodes() {
		node, ok := graph.Node(idx)
		if !ok {
			continue
		}
		if node.Kind != depgraph.Class && node.Kind != depgraph.Function {
			continue
		}
		nb.Insert(node.DisplayName, idx, node.Kind, node.ID)
	}
	names := nb.Finalize()

	bm25Dir := filepath.Join(basePath, "bm25")
	writer, err := bm25index.OpenWriter(bm25Dir)
	if err != nil {
		return nil, err
	}

	docs := bm25index.SynthesizeDocuments(graph, tok)
	if err := writer.Rebuild(ctx, docs); err != nil {
		writer.Close()
		return nil, err
	}

	reader, err := writer.NewReader(ctx)
	if err != nil {
		writer.Close()
		return nil, err
	}

	return &SparseIndex{
		graph:    graph,
		names:    names,
		bm25w:    writer,
		bm25r:    reader,
		tok:      tok,
		reranker: NoopReranker{},
	}, nil
}

// SetReranker installs a reranker to consult when the classifier (§4.7.1)
// indicates the BM25 score distribution is ambiguous. A nil reranker
// reverts to NoopReranker.
func (s *SparseIndex) SetReranker(r Reranker) {
	if r == nil {
		r = NoopReranker{}
	}
	s.reranker = r
}

// Close releases the underlying BM25 writer and reader.
func (s *SparseIndex) Close() error {
	if err := s.bm25r.Close(); err != nil {
		return err
	}
	return s.bm25w.Close()
}

type dedupState struct {
	results  []SearchResult
	byPath   map[string]int
	seenIDs  map[string]bool
	limit    int
}

func newDedupState(limit int) *dedupState {
	return &dedupState{
		byPath:  make(map[string]int),
		seenIDs: make(map[string]bool),
		limit:   limit,
	}
}

// admit applies spec.md §4.7's dedup policy: a candidate is admitted iff its
// path is unseen, its entity id is unseen, and the list is below limit.
func (d *dedupState) admit(r SearchResult) bool {
	if len(d.results) >= d.limit {
		return false
	}
	if _, ok := d.byPath[r.Path]; ok {
		return false
	}
	if d.seenIDs[r.EntityID] {
		return false
	}
	d.byPath[r.Path] = len(d.results)
	d.seenIDs[r.EntityID] = true
	d.results = append(d.results, r)
	return true
}

func (d *dedupState) full() bool {
	return len(d.results) >= d.limit
}

// Search implements spec.md §4.7's phased search: exact name match, then
// prefix name match, then BM25 full text, each phase only contributing up
// to the remaining budget, followed by an optional classifier-gated rerank.
func (s *SparseIndex) Search(ctx context.Context, query string, limit int, kindFilter map[depgraph.NodeKind]bool) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	dedup := newDedupState(limit)

	singleKind, hasSingleKind := singleKindOf(kindFilter)

	for _, entry := range s.names.ExactMatch(query, singleKind, hasSingleKind, limit) {
		if dedup.full() {
			break
		}
		if !passesKindFilter(entry.Kind, kindFilter) {
			continue
		}
		if r, ok := s.projectEntry(entry, 1.0, nil); ok {
			dedup.admit(r)
		}
	}

	if !dedup.full() {
		for _, entry := range s.names.PrefixMatch(query, singleKind, hasSingleKind, limit) {
			if dedup.full() {
				break
			}
			if !passesKindFilter(entry.Kind, kindFilter) {
				continue
			}
			if r, ok := s.projectEntry(entry, 0.9, nil); ok {
				dedup.admit(r)
			}
		}
	}

	if !dedup.full() {
		remaining := limit - len(dedup.results)
		oversample := 6 * remaining
		if floor := remaining + 25; floor > oversample {
			oversample = floor
		}

		strFilter := stringKindFilter(kindFilter)
		bm25Results, err := s.bm25r.Search(ctx, query, oversample, strFilter, s.tok)
		if err != nil {
			return nil, err
		}
		for _, br := range bm25Results {
			if dedup.full() {
				break
			}
			dedup.admit(SearchResult{
				EntityID:     br.EntityID,
				Name:         br.Name,
				Path:         br.Path,
				Kind:         br.Kind,
				Score:        br.Score,
				MatchedTerms: br.MatchedTerms,
			})
		}

		if topScore, gap, ok := bm25ScoreStats(bm25Results); ok {
			if shouldRerank(query, topScore, gap, len(bm25Results)) {
				rerankCtx, cancel := context.WithTimeout(ctx, RerankerTimeout)
				reranked, err := s.reranker.Rerank(rerankCtx, query, dedup.results)
				cancel()
				if err == nil && reranked != nil {
					dedup.results = reranked
				}
			}
		}
	}

	return dedup.results, nil
}

func (s *SparseIndex) projectEntry(entry nameindex.Entry, score float64, matchedTerms []string) (SearchResult, bool) {
	node, ok := s.graph.Node(entry.NodeIndex)
	if !ok {
		return SearchResult{}, false
	}
	return SearchResult{
		EntityID:     node.ID,
		Name:         node.DisplayName,
		Path:         node.FilePath,
		Kind:         node.Kind.String(),
		Score:        score,
		MatchedTerms: matchedTerms,
	}, true
}

func singleKindOf(kindFilter map[depgraph.NodeKind]bool) (depgraph.NodeKind, bool) {
	if len(kindFilter) != 1 {
		return 0, false
	}
	for k := range kindFilter {
		return k, true
	}
	return 0, false
}

func passesKindFilter(kind depgraph.NodeKind, kindFilter map[depgraph.NodeKind]bool) bool {
	if len(kindFilter) == 0 {
		return true
	}
	return kindFilter[kind]
}

func stringKindFilter(kindFilter map[depgraph.NodeKind]bool) map[string]bool {
	if len(kindFilter) == 0 {
		return nil
	}
	out := make(map[string]bool, len(kindFilter))
	for k := range kindFilter {
		out[k.String()] = true
	}
	return out
}

func bm25ScoreStats(results []bm25index.SearchResult) (topScore, gap float64, ok bool) {
	if len(results) == 0 {
		return 0, 0, false
	}
	topScore = results[0].Score
	if len(results) == 1 {
		return topScore, topScore, true
	}
	gap = topScore - results[1].Score
	return topScore, gap, true
}
