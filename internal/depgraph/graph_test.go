package depgraph

import "testing"

func TestAddNodeIdempotent(t *testing.T) {
	g := New()
	a := g.AddNode(NewFileNode("main.py", "main.py", "/repo/main.py"))
	b := g.AddNode(NewFileNode("main.py", "main.py", "/repo/main.py"))
	if a != b {
		t.Fatalf("expected same index for duplicate id, got %d and %d", a, b)
	}
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}
}

func TestAddEdgeWithAlias(t *testing.T) {
	g := New()
	src := g.AddNode(NewFileNode("a.py", "a.py", "/repo/a.py"))
	dst := g.AddNode(NewFileNode("b.py", "b.py", "/repo/b.py"))
	g.AddEdgeWithAlias(src, dst, Import, "Engine")

	edges := g.EdgesFrom(src)
	if len(edges) != 1 || edges[0].Alias != "Engine" || edges[0].Kind != Import {
		t.Fatalf("unexpected edges: %+v", edges)
	}
}

func TestHasEdgeDedup(t *testing.T) {
	g := New()
	a := g.AddNode(NewEntityNode("a.py::f", Function, "f", "/repo/a.py", nil))
	b := g.AddNode(NewEntityNode("a.py::g", Function, "g", "/repo/a.py", nil))

	if g.HasEdge(a, b, Invoke) {
		t.Fatal("expected no edge yet")
	}
	g.AddEdge(a, b, Invoke)
	if !g.HasEdge(a, b, Invoke) {
		t.Fatal("expected edge to be present")
	}
}

func TestFilterEdgesKeepsContain(t *testing.T) {
	g := New()
	root := g.AddNode(NewDirectoryNode(".", "repo", "/repo"))
	file := g.AddNode(NewFileNode("a.py", "a.py", "/repo/a.py"))
	g.AddEdge(root, file, Contain)
	fn := g.AddNode(NewEntityNode("a.py::f", Function, "f", "/repo/a.py", nil))
	g.AddEdge(file, fn, Invoke)

	g.FilterEdges(func(Edge) bool { return false })

	if g.EdgeCount() != 1 {
		t.Fatalf("expected only the contain edge to survive, got %d", g.EdgeCount())
	}
}
