//go:build !cgo

package pyparse

// hasBehaviorSupport is false here: without cgo there is no real syntax
// tree, so call/base-class extraction from node structure is unavailable.
const hasBehaviorSupport = false

// Tree is an opaque handle to a parsed source file. Without cgo there is no
// real syntax tree; Tree just retains the source for the fallback scanners.
type Tree struct {
	source []byte
}

// Parser is a no-op stand-in for the tree-sitter-backed parser.
type Parser struct{}

// NewParser always succeeds; Parse always defers to the fallback scanners.
func NewParser() (*Parser, error) {
	return &Parser{}, nil
}

// Parse wraps source for the fallback extractors. It never fails: unlike the
// cgo build, there is no real grammar to reject malformed input against.
func (p *Parser) Parse(source []byte) (*Tree, error) {
	return &Tree{source: source}, nil
}

// CollectEntities defers to the indentation-based fallback scanner.
func CollectEntities(tree *Tree) []ParsedEntity {
	return FallbackEntities(tree.source)
}

// CollectImports defers to the line-based fallback scanner.
func CollectImports(tree *Tree) []ImportDirective {
	return FallbackImports(tree.source)
}

// CollectBehaviorRefs cannot be approximated without a real syntax tree: call
// and base-class extraction need node structure, not line text. Builds
// without cgo produce entities and imports only; see spec.md §4.2.
func CollectBehaviorRefs(tree *Tree) ([]CallRef, []BaseClassRef, []DecoratorRef) {
	return nil, nil, nil
}

// CollectExports defers to the regex-based fallback scanner.
func CollectExports(tree *Tree) *ModuleExports {
	return FallbackExports(tree.source)
}
