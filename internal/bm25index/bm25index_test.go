package bm25index

import (
	"context"
	"testing"

	"codegraph/internal/depgraph"
	"codegraph/internal/tokenize"
)

func setupTestWriter(t *testing.T) *Writer {
	t.Helper()
	w, err := OpenWriter(t.TempDir())
	if err != nil {
		t.Fatalf("OpenWriter failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWriterInitSchema(t *testing.T) {
	w := setupTestWriter(t)

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='bm25_docs'").Scan(&count); err != nil || count != 1 {
		t.Fatalf("bm25_docs table not created: err=%v count=%d", err, count)
	}
	if err := w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='bm25_meta'").Scan(&count); err != nil || count != 1 {
		t.Fatalf("bm25_meta table not created: err=%v count=%d", err, count)
	}
}

func TestRebuildAndSearch(t *testing.T) {
	w := setupTestWriter(t)
	ctx := context.Background()

	docs := []Document{
		{EntityID: "pkg/core.py::User", Name: "User", Path: "pkg/core.py", Kind: "class", Content: "user user class"},
		{EntityID: "pkg/auth.py::validate_credentials", Name: "validate_credentials", Path: "pkg/auth.py", Kind: "function",
			Content: "valid credenti validate user login credentials function"},
	}
	if err := w.Rebuild(ctx, docs); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	reader, err := w.NewReader(ctx)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	tok := tokenize.WithDefaultStopWords()
	results, err := reader.Search(ctx, "credentials", 10, nil, tok)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].EntityID != "pkg/auth.py::validate_credentials" {
		t.Errorf("EntityID = %q, want validate_credentials entity", results[0].EntityID)
	}
	if len(results[0].MatchedTerms) == 0 {
		t.Error("expected at least one matched term")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	w := setupTestWriter(t)
	ctx := context.Background()
	if err := w.Rebuild(ctx, []Document{{EntityID: "x", Content: "x"}}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	reader, err := w.NewReader(ctx)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	results, err := reader.Search(ctx, "   ", 10, nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results != nil {
		t.Errorf("Search on empty query = %v, want nil", results)
	}
}

func TestSearchKindFilter(t *testing.T) {
	w := setupTestWriter(t)
	ctx := context.Background()

	docs := []Document{
		{EntityID: "a", Name: "widget", Path: "a.py", Kind: "class", Content: "widget class"},
		{EntityID: "b", Name: "widget_factory", Path: "b.py", Kind: "function", Content: "widget factory function"},
	}
	if err := w.Rebuild(ctx, docs); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	reader, err := w.NewReader(ctx)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	tok := tokenize.WithDefaultStopWords()
	results, err := reader.Search(ctx, "widget", 10, map[string]bool{"class": true}, tok)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range results {
		if r.Kind != "class" {
			t.Errorf("unexpected kind %q leaked through filter", r.Kind)
		}
	}
}

func TestReloadSeesNewSnapshot(t *testing.T) {
	w := setupTestWriter(t)
	ctx := context.Background()

	if err := w.Rebuild(ctx, []Document{{EntityID: "a", Name: "alpha", Content: "alpha"}}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	reader, err := w.NewReader(ctx)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if err := w.Rebuild(ctx, []Document{{EntityID: "b", Name: "beta", Content: "beta"}}); err != nil {
		t.Fatalf("second Rebuild failed: %v", err)
	}

	tok := tokenize.WithDefaultStopWords()
	stale, err := reader.Search(ctx, "beta", 10, nil, tok)
	if err != nil {
		t.Fatalf("Search on stale reader failed: %v", err)
	}
	if len(stale) != 0 {
		t.Error("reader opened before Rebuild should not see the new document until Reload")
	}

	if err := reader.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	fresh, err := reader.Search(ctx, "beta", 10, nil, tok)
	if err != nil {
		t.Fatalf("Search after Reload failed: %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("len(fresh) = %d, want 1 after Reload", len(fresh))
	}
}

func TestSynthesizeDocuments(t *testing.T) {
	g := depgraph.New()
	fileIdx := g.AddNode(depgraph.NewFileNode("pkg/core.py", "core.py", "/repo/pkg/core.py"))
	rng := &depgraph.SourceRange{StartLine: 1, EndLine: 3}
	classNode := depgraph.NewEntityNode("pkg/core.py::Service", depgraph.Class, "Service", "/repo/pkg/core.py", rng)
	classNode.Attributes["source_snippet"] = "class Service:\n    # does the thing\n    pass"
	classIdx := g.AddNode(classNode)
	g.AddEdge(fileIdx, classIdx, depgraph.Contain)

	docs := SynthesizeDocuments(g, tokenize.WithDefaultStopWords())

	var sawFile, sawClass bool
	for _, d := range docs {
		switch d.EntityID {
		case "pkg/core.py":
			sawFile = true
			if !contains(d.Content, "Service") {
				t.Error("file document should fall back to contained entity names")
			}
		case "pkg/core.py::Service":
			sawClass = true
			if !contains(d.Content, "thing") {
				t.Error("class document should include extracted comment text")
			}
		}
	}
	if !sawFile || !sawClass {
		t.Fatalf("expected both a file and a class document, got %d docs", len(docs))
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
