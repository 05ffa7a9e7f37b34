//go:build cgo

package pyparse

import sitter "github.com/smacker/go-tree-sitter"

// CallRef is one call expression found inside a function or class body.
type CallRef struct {
	Scope    []string // path of the enclosing class/function, "__init__" folded into its class
	Receiver string   // text left of the last dot, e.g. "self" or "obj.inner"; empty for bare calls
	Callee   string   // the called name itself, e.g. "foo" in "self.foo(...)"
	Line     int
}

// BaseClassRef is one base-class expression in a class header.
type BaseClassRef struct {
	Scope []string // the class's own path
	Name  string   // dotted base expression text, e.g. "Base" or "pkg.Base"
}

// DecoratorRef is one decorator applied to a class or function.
type DecoratorRef struct {
	Scope []string
	Name  string
}

// CollectBehaviorRefs walks the tree gathering call sites, base classes, and
// decorators, scoped to their enclosing class/function path. __init__ bodies
// are folded into the owning class's scope, mirroring CollectEntities.
func CollectBehaviorRefs(tree *Tree) ([]CallRef, []BaseClassRef, []DecoratorRef) {
	var calls []CallRef
	var bases []BaseClassRef
	var decorators []DecoratorRef
	var scope []string
	walkBehavior(tree.root, tree.source, &scope, &calls, &bases, &decorators)
	return calls, bases, decorators
}

func walkBehavior(node *sitter.Node, source []byte, scope *[]string, calls *[]CallRef, bases *[]BaseClassRef, decorators *[]DecoratorRef) {
	switch node.Type() {
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		*scope = append(*scope, nameNode.Content(source))
		classScope := append([]string{}, *scope...)

		if superArgs := node.ChildByFieldName("superclasses"); superArgs != nil {
			for i := 0; i < int(superArgs.NamedChildCount()); i++ {
				arg := superArgs.NamedChild(i)
				if arg.Type() == "keyword_argument" {
					continue // e.g. metaclass=...
				}
				*bases = append(*bases, BaseClassRef{Scope: classScope, Name: arg.Content(source)})
			}
		}

		if body := node.ChildByFieldName("body"); body != nil {
			walkBehavior(body, source, scope, calls, bases, decorators)
		}
		*scope = (*scope)[:len(*scope)-1]
		return

	case "function_definition", "async_function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Content(source)
		foldIntoParent := name == "__init__" && len(*scope) > 0
		if !foldIntoParent {
			*scope = append(*scope, name)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			walkBehavior(body, source, scope, calls, bases, decorators)
		}
		if !foldIntoParent {
			*scope = (*scope)[:len(*scope)-1]
		}
		return

	case "decorated_definition":
		// Decorators are attributed to the scope of the entity they
		// decorate (the function/class they wrap), not the enclosing
		// scope, so they line up with that entity during edge building.
		var fullScope []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			t := child.Type()
			if t != "function_definition" && t != "async_function_definition" && t != "class_definition" {
				continue
			}
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nameNode.Content(source)
			foldIntoParent := t != "class_definition" && name == "__init__" && len(*scope) > 0
			if foldIntoParent {
				fullScope = append([]string{}, *scope...)
			} else {
				fullScope = append(append([]string{}, *scope...), name)
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				if expr := child.NamedChild(0); expr != nil {
					*decorators = append(*decorators, DecoratorRef{Scope: fullScope, Name: decoratorName(expr, source)})
				}
			} else {
				walkBehavior(child, source, scope, calls, bases, decorators)
			}
		}
		return

	case "call":
		fn := node.ChildByFieldName("function")
		if fn != nil {
			recv, callee := splitCallTarget(fn, source)
			*calls = append(*calls, CallRef{
				Scope:    append([]string{}, *scope...),
				Receiver: recv,
				Callee:   callee,
				Line:     int(node.StartPoint().Row) + 1,
			})
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walkBehavior(node.NamedChild(i), source, scope, calls, bases, decorators)
	}
}

func decoratorName(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "call":
		if fn := node.ChildByFieldName("function"); fn != nil {
			return fn.Content(source)
		}
	}
	return node.Content(source)
}

// splitCallTarget splits `a.b.c` into receiver="a.b" and callee="c". Bare
// names have an empty receiver.
func splitCallTarget(fn *sitter.Node, source []byte) (receiver, callee string) {
	if fn.Type() != "attribute" {
		return "", fn.Content(source)
	}
	obj := fn.ChildByFieldName("object")
	attr := fn.ChildByFieldName("attribute")
	if attr == nil {
		return "", fn.Content(source)
	}
	if obj != nil {
		receiver = obj.Content(source)
	}
	callee = attr.Content(source)
	return receiver, callee
}
