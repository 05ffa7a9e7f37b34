package sparseindex

import (
	"context"
	"testing"

	"codegraph/internal/depgraph"
)

func buildTestGraph() *depgraph.Graph {
	g := depgraph.New()
	fileIdx := g.AddNode(depgraph.NewFileNode("pkg/core.py", "core.py", "pkg/core.py"))

	rng := &depgraph.SourceRange{StartLine: 1, EndLine: 10}
	userClass := depgraph.NewEntityNode("pkg/core.py::User", depgraph.Class, "User", "pkg/core.py", rng)
	userClass.Attributes["source_snippet"] = "class User:\n    def save(self):\n        pass"
	userIdx := g.AddNode(userClass)
	g.AddEdge(fileIdx, userIdx, depgraph.Contain)

	saveFn := depgraph.NewEntityNode("pkg/core.py::User.save", depgraph.Function, "save", "pkg/core.py", rng)
	saveFn.Attributes["source_snippet"] = "def save(self):\n    self.persist()"
	saveIdx := g.AddNode(saveFn)
	g.AddEdge(userIdx, saveIdx, depgraph.Contain)

	otherFile := g.AddNode(depgraph.NewFileNode("pkg/auth.py", "auth.py", "pkg/auth.py"))
	authFn := depgraph.NewEntityNode("pkg/auth.py::authenticate", depgraph.Function, "authenticate", "pkg/auth.py", rng)
	authFn.Attributes["source_snippet"] = "def authenticate(user):\n    # checks credentials against the store\n    return True"
	authIdx := g.AddNode(authFn)
	g.AddEdge(otherFile, authIdx, depgraph.Contain)

	return g
}

func TestSearchExactMatch(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "User", 10, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].EntityID != "pkg/core.py::User" || results[0].Score != 1.0 {
		t.Errorf("top result = %+v, want exact User match with score 1.0", results[0])
	}
}

func TestSearchPrefixMatch(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "auth", 10, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	found := false
	for _, r := range results {
		if r.EntityID == "pkg/auth.py::authenticate" && r.Score == 0.9 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a prefix match for authenticate, got %+v", results)
	}
}

func TestSearchFallsBackToBM25(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "credentials", 10, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected BM25 fallback to surface the authenticate function")
	}
}

func TestSearchLimitZero(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "User", 0, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results != nil {
		t.Errorf("limit=0 should return nil, got %v", results)
	}
}

func TestSearchKindFilter(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "User", 10, map[depgraph.NodeKind]bool{depgraph.Function: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range results {
		if r.Kind != "function" {
			t.Errorf("kind filter leaked non-function result: %+v", r)
		}
	}
}

func TestSearchNoDuplicatePathsOrIDs(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.Search(context.Background(), "save", 10, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	seenPaths := make(map[string]bool)
	seenIDs := make(map[string]bool)
	for _, r := range results {
		if seenPaths[r.Path] {
			t.Errorf("duplicate path in results: %s", r.Path)
		}
		if seenIDs[r.EntityID] {
			t.Errorf("duplicate entity id in results: %s", r.EntityID)
		}
		seenPaths[r.Path] = true
		seenIDs[r.EntityID] = true
	}
}

type recordingReranker struct {
	called bool
}

func (r *recordingReranker) Rerank(_ context.Context, _ string, results []SearchResult) ([]SearchResult, error) {
	r.called = true
	return results, nil
}

func TestSearchRerankerGating(t *testing.T) {
	g := buildTestGraph()
	idx, err := FromGraph(context.Background(), g, t.TempDir(), AnalyzerConfig{})
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	defer idx.Close()

	rr := &recordingReranker{}
	idx.SetReranker(rr)

	// "User" contains no rerank keyword, so the classifier never lets the
	// reranker run, even though the BM25 phase runs to fill the limit.
	if _, err := idx.Search(context.Background(), "User", 10, nil); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if rr.called {
		t.Error("reranker should not be invoked for a query without a rerank keyword")
	}
}
