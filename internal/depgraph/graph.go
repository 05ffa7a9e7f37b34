// Package depgraph implements the typed directed multigraph described in
// spec.md §3/§4.3: directories, files, classes, and functions as nodes;
// contain/import/invoke/inherit as edges, addressed by stable integer
// indices so the graph owns all of its storage (spec.md §9, "arena-style
// ownership").
package depgraph

import "fmt"

// NodeKind is the closed set of node kinds.
type NodeKind int

const (
	Directory NodeKind = iota
	File
	Class
	Function
)

func (k NodeKind) String() string {
	switch k {
	case Directory:
		return "directory"
	case File:
		return "file"
	case Class:
		return "class"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// EdgeKind is the closed set of edge kinds.
type EdgeKind int

const (
	Contain EdgeKind = iota
	Import
	Invoke
	Inherit
)

func (k EdgeKind) String() string {
	switch k {
	case Contain:
		return "contain"
	case Import:
		return "import"
	case Invoke:
		return "invoke"
	case Inherit:
		return "inherit"
	default:
		return "unknown"
	}
}

// Index is a stable handle into the graph's node storage.
type Index int

// SourceRange is an inclusive 1-based line range.
type SourceRange struct {
	StartLine int
	EndLine   int
}

// Node holds the metadata attached to a graph node.
type Node struct {
	ID          string
	Kind        NodeKind
	DisplayName string
	FilePath    string // empty for directory nodes without a resolved path
	HasRange    bool
	Range       SourceRange
	Attributes  map[string]string
}

// NewDirectoryNode builds a directory node.
func NewDirectoryNode(id, displayName, filePath string) Node {
	return Node{ID: id, Kind: Directory, DisplayName: displayName, FilePath: filePath, Attributes: map[string]string{}}
}

// NewFileNode builds a file node.
func NewFileNode(id, displayName, filePath string) Node {
	return Node{ID: id, Kind: File, DisplayName: displayName, FilePath: filePath, Attributes: map[string]string{}}
}

// NewEntityNode builds a class/function node with an optional source range.
func NewEntityNode(id string, kind NodeKind, displayName, filePath string, rng *SourceRange) Node {
	n := Node{ID: id, Kind: kind, DisplayName: displayName, FilePath: filePath, Attributes: map[string]string{}}
	if rng != nil {
		n.HasRange = true
		n.Range = *rng
	}
	return n
}

// Edge holds the metadata attached to a graph edge.
type Edge struct {
	Source Index
	Target Index
	Kind   EdgeKind
	Alias  string // only meaningful for Import edges
}

// Graph is a typed directed multigraph with a stable id<->index bijection.
// It is not safe for concurrent mutation; builders own it exclusively until
// the build finishes (spec.md §5).
type Graph struct {
	nodes    []Node
	edges    []Edge
	byID     map[string]Index
	outEdges map[Index][]int // index into edges, by source
	inEdges  map[Index][]int // index into edges, by target
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byID:     make(map[string]Index),
		outEdges: make(map[Index][]int),
		inEdges:  make(map[Index][]int),
	}
}

// AddNode inserts node, or returns the existing index if its id is already
// present (idempotent on id, per spec.md §4.3).
func (g *Graph) AddNode(n Node) Index {
	if idx, ok := g.byID[n.ID]; ok {
		return idx
	}
	idx := Index(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = idx
	return idx
}

// AddEdge inserts an edge with no alias payload.
func (g *Graph) AddEdge(src, dst Index, kind EdgeKind) {
	g.AddEdgeWithAlias(src, dst, kind, "")
}

// AddEdgeWithAlias inserts an edge carrying an alias (used by Import edges).
func (g *Graph) AddEdgeWithAlias(src, dst Index, kind EdgeKind, alias string) {
	e := Edge{Source: src, Target: dst, Kind: kind, Alias: alias}
	eidx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outEdges[src] = append(g.outEdges[src], eidx)
	g.inEdges[dst] = append(g.inEdges[dst], eidx)
}

// GetIndex looks up a node's index by its canonical id.
func (g *Graph) GetIndex(id string) (Index, bool) {
	idx, ok := g.byID[id]
	return idx, ok
}

// Node returns the node at idx.
func (g *Graph) Node(idx Index) (*Node, bool) {
	if idx < 0 || int(idx) >= len(g.nodes) {
		return nil, false
	}
	return &g.nodes[idx], true
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns all node indices in insertion order.
func (g *Graph) Nodes() []Index {
	out := make([]Index, len(g.nodes))
	for i := range g.nodes {
		out[i] = Index(i)
	}
	return out
}

// EdgesFrom returns all edges whose source is idx.
func (g *Graph) EdgesFrom(idx Index) []Edge {
	ids := g.outEdges[idx]
	out := make([]Edge, len(ids))
	for i, e := range ids {
		out[i] = g.edges[e]
	}
	return out
}

// EdgesTo returns all edges whose target is idx.
func (g *Graph) EdgesTo(idx Index) []Edge {
	ids := g.inEdges[idx]
	out := make([]Edge, len(ids))
	for i, e := range ids {
		out[i] = g.edges[e]
	}
	return out
}

// AllEdges returns every edge in the graph in insertion order.
func (g *Graph) AllEdges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// HasEdge reports whether an edge of the given kind already connects src to
// dst, used to enforce the at-most-once invariant for behavior edges.
func (g *Graph) HasEdge(src, dst Index, kind EdgeKind) bool {
	for _, e := range g.outEdges[src] {
		edge := g.edges[e]
		if edge.Target == dst && edge.Kind == kind {
			return true
		}
	}
	return false
}

// FilterEdges rebuilds the edge storage keeping only edges that pass keep.
// Contain edges are never offered to keep (see spec.md §4.4.9).
func (g *Graph) FilterEdges(keep func(Edge) bool) {
	var retained []Edge
	for _, e := range g.edges {
		if e.Kind == Contain || keep(e) {
			retained = append(retained, e)
		}
	}
	g.edges = retained
	g.outEdges = make(map[Index][]int)
	g.inEdges = make(map[Index][]int)
	for i, e := range g.edges {
		g.outEdges[e.Source] = append(g.outEdges[e.Source], i)
		g.inEdges[e.Target] = append(g.inEdges[e.Target], i)
	}
}

// String renders a short diagnostic summary, useful in logs.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph{nodes=%d, edges=%d}", len(g.nodes), len(g.edges))
}
