//go:build cgo

// Package pyparse wraps a Python grammar (tree-sitter, via cgo) to emit a
// parse tree and extracts the entity declarations, import directives, and
// AST references the graph builder (C4) needs, per spec.md §4.2. When cgo is
// unavailable, see fallback.go and stub.go for the best-effort replacement.
package pyparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codegraph/internal/depgraph"
)

// hasBehaviorSupport is true when the real grammar (and therefore call/base
// extraction from node structure) is available.
const hasBehaviorSupport = true

// ParsedEntity is a lightweight view of a parsed class/function declaration.
type ParsedEntity struct {
	Segments []string
	Kind     depgraph.NodeKind // Class or Function
	Range    *depgraph.SourceRange
	IsAsync  bool
}

// QualifiedName joins the segments with sep (conventionally "::").
func (e ParsedEntity) QualifiedName(sep string) string {
	out := ""
	for i, s := range e.Segments {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

// Identifier returns the entity's own name (last segment).
func (e ParsedEntity) Identifier() string {
	if len(e.Segments) == 0 {
		return ""
	}
	return e.Segments[len(e.Segments)-1]
}

// ModuleSpecifier is the (level, segments) pair from an import statement.
type ModuleSpecifier struct {
	Level    int
	Segments []string
}

// ImportEntity is one name imported via `from module import <entity>`.
type ImportEntity struct {
	Name       string
	Alias      string
	IsWildcard bool
}

// ImportDirectiveKind distinguishes `import X` from `from X import Y`.
type ImportDirectiveKind int

const (
	DirectiveModule ImportDirectiveKind = iota
	DirectiveFromModule
)

// ImportDirective is one parsed import statement.
type ImportDirective struct {
	Kind     ImportDirectiveKind
	Module   ModuleSpecifier
	Alias    string // DirectiveModule only
	Entities []ImportEntity // DirectiveFromModule only
	Scope    []string       // enclosing class/function path, if not module-level
}

// Tree is an opaque handle to a parsed source file's syntax tree.
type Tree struct {
	root   *sitter.Node
	source []byte
}

// Parser is a stateful tree-sitter parser wrapper for Python source.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a Parser bound to the Python grammar.
func NewParser() (*Parser, error) {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{inner: p}, nil
}

// Parse parses source into a Tree.
func (p *Parser) Parse(source []byte) (*Tree, error) {
	tree, err := p.inner.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("pyparse: failed to parse source: %w", err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("pyparse: parser returned no tree")
	}
	return &Tree{root: tree.RootNode(), source: source}, nil
}

// CollectEntities extracts class/function declarations in source order.
func CollectEntities(tree *Tree) []ParsedEntity {
	var entities []ParsedEntity
	var nameStack []string
	var kindStack []depgraph.NodeKind
	visitEntities(tree.root, tree.source, &nameStack, &kindStack, &entities)
	return entities
}

func visitEntities(node *sitter.Node, source []byte, nameStack *[]string, kindStack *[]depgraph.NodeKind, entities *[]ParsedEntity) {
	switch node.Type() {
	case "class_definition":
		handleClass(node, source, nameStack, kindStack, entities)
		return
	case "function_definition", "async_function_definition":
		handleFunction(node, source, nameStack, kindStack, entities, node.Type() == "async_function_definition")
		return
	case "decorated_definition":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			visitEntities(node.NamedChild(i), source, nameStack, kindStack, entities)
		}
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		visitEntities(node.NamedChild(i), source, nameStack, kindStack, entities)
	}
}

func handleClass(node *sitter.Node, source []byte, nameStack *[]string, kindStack *[]depgraph.NodeKind, entities *[]ParsedEntity) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(source)

	*nameStack = append(*nameStack, name)
	*kindStack = append(*kindStack, depgraph.Class)
	segs := append([]string{}, *nameStack...)
	rng := rangeFromNode(node)
	*entities = append(*entities, ParsedEntity{Segments: segs, Kind: depgraph.Class, Range: &rng})

	if body := node.ChildByFieldName("body"); body != nil {
		visitEntities(body, source, nameStack, kindStack, entities)
	}

	*kindStack = (*kindStack)[:len(*kindStack)-1]
	*nameStack = (*nameStack)[:len(*nameStack)-1]
}

func handleFunction(node *sitter.Node, source []byte, nameStack *[]string, kindStack *[]depgraph.NodeKind, entities *[]ParsedEntity, isAsync bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(source)

	// __init__ does not get its own Function node; its body is traversed in
	// place so nested defs still surface (spec.md §3 invariant 5).
	if len(*kindStack) > 0 && (*kindStack)[len(*kindStack)-1] == depgraph.Class && name == "__init__" {
		if body := node.ChildByFieldName("body"); body != nil {
			visitEntities(body, source, nameStack, kindStack, entities)
		}
		return
	}

	*nameStack = append(*nameStack, name)
	*kindStack = append(*kindStack, depgraph.Function)
	segs := append([]string{}, *nameStack...)
	rng := rangeFromNode(node)
	*entities = append(*entities, ParsedEntity{Segments: segs, Kind: depgraph.Function, Range: &rng, IsAsync: isAsync})

	if body := node.ChildByFieldName("body"); body != nil {
		visitEntities(body, source, nameStack, kindStack, entities)
	}

	*kindStack = (*kindStack)[:len(*kindStack)-1]
	*nameStack = (*nameStack)[:len(*nameStack)-1]
}

func rangeFromNode(node *sitter.Node) depgraph.SourceRange {
	return depgraph.SourceRange{
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
	}
}

// CollectImports extracts import directives in document order, recording the
// enclosing class/function scope for each.
func CollectImports(tree *Tree) []ImportDirective {
	var directives []ImportDirective
	var scope []string
	visitImports(tree.root, tree.source, &directives, &scope)
	return directives
}

func visitImports(node *sitter.Node, source []byte, directives *[]ImportDirective, scope *[]string) {
	switch node.Type() {
	case "class_definition", "function_definition", "async_function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			*scope = append(*scope, nameNode.Content(source))
			for i := 0; i < int(node.NamedChildCount()); i++ {
				visitImports(node.NamedChild(i), source, directives, scope)
			}
			*scope = (*scope)[:len(*scope)-1]
			return
		}
	case "decorated_definition":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			visitImports(node.NamedChild(i), source, directives, scope)
		}
		return
	case "import_statement":
		*directives = append(*directives, parseImportStatement(node, source, *scope)...)
		return
	case "import_from_statement":
		if d, ok := parseFromStatement(node, source, *scope); ok {
			*directives = append(*directives, d)
		}
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		visitImports(node.NamedChild(i), source, directives, scope)
	}
}

func scopeCopy(scope []string) []string {
	if len(scope) == 0 {
		return nil
	}
	return append([]string{}, scope...)
}

func parseImportStatement(node *sitter.Node, source []byte, scope []string) []ImportDirective {
	var out []ImportDirective
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, ImportDirective{
				Kind:   DirectiveModule,
				Module: ModuleSpecifier{Segments: splitDotted(child.Content(source))},
				Scope:  scopeCopy(scope),
			})
		case "aliased_import":
			nameNode := child.NamedChild(0)
			aliasNode := child.NamedChild(1)
			if nameNode == nil {
				continue
			}
			d := ImportDirective{
				Kind:   DirectiveModule,
				Module: ModuleSpecifier{Segments: splitDotted(nameNode.Content(source))},
				Scope:  scopeCopy(scope),
			}
			if aliasNode != nil {
				d.Alias = aliasNode.Content(source)
			}
			out = append(out, d)
		}
	}
	return out
}

func parseFromStatement(node *sitter.Node, source []byte, scope []string) (ImportDirective, bool) {
	var moduleSpec ModuleSpecifier
	var entities []ImportEntity
	foundModule := false

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			if !foundModule {
				moduleSpec = ModuleSpecifier{Segments: splitDotted(child.Content(source))}
				foundModule = true
			} else {
				entities = append(entities, ImportEntity{Name: child.Content(source)})
			}
		case "relative_import":
			moduleSpec = parseRelativeImport(child, source)
			foundModule = true
		case "aliased_import":
			nameNode := child.NamedChild(0)
			aliasNode := child.NamedChild(1)
			if nameNode == nil {
				continue
			}
			e := ImportEntity{Name: nameNode.Content(source)}
			if aliasNode != nil {
				e.Alias = aliasNode.Content(source)
			}
			entities = append(entities, e)
		case "wildcard_import":
			entities = append(entities, ImportEntity{Name: "*", IsWildcard: true})
		case "identifier":
			entities = append(entities, ImportEntity{Name: child.Content(source)})
		}
	}

	if !foundModule || len(entities) == 0 {
		return ImportDirective{}, false
	}
	return ImportDirective{
		Kind:     DirectiveFromModule,
		Module:   moduleSpec,
		Entities: entities,
		Scope:    scopeCopy(scope),
	}, true
}

func parseRelativeImport(node *sitter.Node, source []byte) ModuleSpecifier {
	level := 0
	var segments []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_prefix":
			level += len(child.Content(source))
		case "dotted_name":
			segments = splitDotted(child.Content(source))
		}
	}
	return ModuleSpecifier{Level: level, Segments: segments}
}

func splitDotted(name string) []string {
	var segs []string
	cur := ""
	for _, r := range name {
		if r == '.' {
			if cur != "" {
				segs = append(segs, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		segs = append(segs, cur)
	}
	return segs
}
