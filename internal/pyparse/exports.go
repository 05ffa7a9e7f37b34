//go:build cgo

package pyparse

import sitter "github.com/smacker/go-tree-sitter"

// CollectExports walks module-level statements for __all__ assignments, plus
// registers a ModuleSource for every module-level `from X import *` (a
// wildcard re-export implicitly contributes to the importer's own exports,
// independent of any explicit __all__; spec.md §4.4.5).
func CollectExports(tree *Tree) *ModuleExports {
	exports := newModuleExports()
	root := tree.root
	for i := 0; i < int(root.NamedChildCount()); i++ {
		visitExportStatement(root.NamedChild(i), tree.source, exports)
	}
	return exports
}

func visitExportStatement(node *sitter.Node, source []byte, exports *ModuleExports) {
	switch node.Type() {
	case "expression_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			visitExportStatement(node.NamedChild(i), source, exports)
		}
	case "assignment":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left != nil && left.Type() == "identifier" && left.Content(source) == "__all__" && right != nil {
			collectExportsFromExpr(right, source, exports)
		}
	case "augmented_assignment":
		left := node.ChildByFieldName("left")
		op := node.ChildByFieldName("operator")
		right := node.ChildByFieldName("right")
		isPlus := op != nil && op.Content(source) == "+="
		if left != nil && left.Type() == "identifier" && left.Content(source) == "__all__" && isPlus && right != nil {
			collectExportsFromExpr(right, source, exports)
		}
	case "import_from_statement":
		hasWildcard := false
		var moduleSpec ModuleSpecifier
		foundModule := false
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c := node.NamedChild(i)
			switch c.Type() {
			case "wildcard_import":
				hasWildcard = true
			case "dotted_name":
				if !foundModule {
					moduleSpec = ModuleSpecifier{Segments: splitDotted(c.Content(source))}
					foundModule = true
				}
			case "relative_import":
				moduleSpec = parseRelativeImport(c, source)
				foundModule = true
			}
		}
		if hasWildcard && foundModule {
			exports.addSource(ExportSource{Kind: ExportModule, Spec: moduleSpec})
		}
	}
}

func collectExportsFromExpr(node *sitter.Node, source []byte, exports *ModuleExports) {
	switch node.Type() {
	case "list", "tuple", "set":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			collectExportsFromExpr(node.NamedChild(i), source, exports)
		}
	case "string":
		exports.addName(stringLiteralValue(node, source))
	case "binary_operator":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		op := node.ChildByFieldName("operator")
		if op == nil || op.Content(source) == "+" {
			if left != nil {
				collectExportsFromExpr(left, source, exports)
			}
			if right != nil {
				collectExportsFromExpr(right, source, exports)
			}
		}
	case "attribute":
		attr := node.ChildByFieldName("attribute")
		obj := node.ChildByFieldName("object")
		if attr != nil && attr.Content(source) == "__all__" && obj != nil {
			segs := attributeSegments(obj, source)
			if len(segs) == 1 {
				exports.addSource(ExportSource{Kind: ExportAlias, Alias: segs[0]})
			} else if len(segs) > 1 {
				exports.addSource(ExportSource{Kind: ExportModule, Spec: ModuleSpecifier{Segments: segs}})
			}
		}
	case "identifier":
		exports.addSource(ExportSource{Kind: ExportAlias, Alias: node.Content(source)})
	}
}

func stringLiteralValue(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c.Type() == "string_content" {
			return c.Content(source)
		}
	}
	return ""
}

func attributeSegments(node *sitter.Node, source []byte) []string {
	switch node.Type() {
	case "identifier":
		return []string{node.Content(source)}
	case "attribute":
		obj := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return nil
		}
		base := attributeSegments(obj, source)
		if base == nil {
			return nil
		}
		return append(base, attr.Content(source))
	}
	return nil
}
