// Package pyparse: best-effort fallback extraction used both when a tree-
// sitter parse fails on malformed source (spec.md §4.2 failure mode) and, via
// stub.go, on non-cgo builds where tree-sitter is unavailable at all. It scans
// indentation and keyword prefixes instead of building a real syntax tree, so
// it recovers entities and plain `import`/`from ... import` lines but cannot
// see calls, base classes, or decorators.
package pyparse

import (
	"regexp"
	"strings"

	"codegraph/internal/depgraph"
)

var (
	classRe = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	defRe   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)`)
	importRe = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromRe   = regexp.MustCompile(`^\s*from\s+(\.*)([A-Za-z0-9_.]*)\s+import\s+(.+)$`)

	allAssignRe    = regexp.MustCompile(`^__all__\s*=\s*(.+)$`)
	allAugAssignRe = regexp.MustCompile(`^__all__\s*\+=\s*(.+)$`)
	allAttrRe      = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\.__all__\s*$`)
	allNameRe      = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*$`)
	quotedStringRe = regexp.MustCompile(`["']([^"']*)["']`)
)

type fallbackFrame struct {
	indent int
	name   string
	kind   depgraph.NodeKind
}

// FallbackEntities recovers class/function entities from source text using
// indentation alone, for use when tree-sitter cannot parse the file.
func FallbackEntities(source []byte) []ParsedEntity {
	lines := strings.Split(string(source), "\n")
	var stack []fallbackFrame
	var entities []ParsedEntity
	var starts []int

	flushTo := func(indent int) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			startLine := starts[len(starts)-1]
			starts = starts[:len(starts)-1]
			segs := make([]string, 0, len(stack)+1)
			for _, f := range stack {
				segs = append(segs, f.name)
			}
			segs = append(segs, top.name)
			entities = append(entities, ParsedEntity{
				Segments: segs,
				Kind:     top.kind,
				Range:    &depgraph.SourceRange{StartLine: startLine, EndLine: startLine},
			})
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := indentWidth(line)
		flushTo(indent)

		if m := classRe.FindStringSubmatch(line); m != nil {
			stack = append(stack, fallbackFrame{indent: indent, name: m[2], kind: depgraph.Class})
			starts = append(starts, i+1)
			continue
		}
		if m := defRe.FindStringSubmatch(line); m != nil {
			if m[2] == "__init__" && len(stack) > 0 && stack[len(stack)-1].kind == depgraph.Class {
				continue
			}
			stack = append(stack, fallbackFrame{indent: indent, name: m[2], kind: depgraph.Function})
			starts = append(starts, i+1)
		}
	}
	flushTo(-1)

	// flushTo pops in LIFO order; reverse to restore source order.
	for l, r := 0, len(entities)-1; l < r; l, r = l+1, r-1 {
		entities[l], entities[r] = entities[r], entities[l]
	}
	return entities
}

// FallbackImports recovers top-level import directives via line matching.
// It cannot determine enclosing scope, so every directive is module-level.
func FallbackImports(source []byte) []ImportDirective {
	var out []ImportDirective
	for _, line := range strings.Split(string(source), "\n") {
		trimmed := strings.TrimSpace(line)
		if m := fromRe.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			segs := splitDotted(m[2])
			var entities []ImportEntity
			for _, part := range strings.Split(m[3], ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if part == "*" {
					entities = append(entities, ImportEntity{Name: "*", IsWildcard: true})
					continue
				}
				fields := strings.Fields(strings.ReplaceAll(part, " as ", " AS "))
				if len(fields) == 3 && fields[1] == "AS" {
					entities = append(entities, ImportEntity{Name: fields[0], Alias: fields[2]})
				} else {
					entities = append(entities, ImportEntity{Name: part})
				}
			}
			if len(entities) > 0 {
				out = append(out, ImportDirective{Kind: DirectiveFromModule, Module: ModuleSpecifier{Level: level, Segments: segs}, Entities: entities})
			}
			continue
		}
		if m := importRe.FindStringSubmatch(trimmed); m != nil {
			for _, part := range strings.Split(m[1], ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				fields := strings.Fields(strings.ReplaceAll(part, " as ", " AS "))
				if len(fields) == 3 && fields[1] == "AS" {
					out = append(out, ImportDirective{Kind: DirectiveModule, Module: ModuleSpecifier{Segments: splitDotted(fields[0])}, Alias: fields[2]})
				} else {
					out = append(out, ImportDirective{Kind: DirectiveModule, Module: ModuleSpecifier{Segments: splitDotted(part)}})
				}
			}
		}
	}
	return out
}

// FallbackExports recovers a module's __all__ contract and implicit
// wildcard-reexport sources by regex over module-level-looking lines. It
// cannot distinguish true module level from nested scope, so it is only
// accurate for the common case of top-level, unindented statements.
func FallbackExports(source []byte) *ModuleExports {
	exports := newModuleExports()
	for _, line := range strings.Split(string(source), "\n") {
		trimmed := strings.TrimSpace(line)
		if indentWidth(line) > 0 {
			continue
		}

		if m := fromRe.FindStringSubmatch(trimmed); m != nil {
			if strings.Contains(m[3], "*") {
				exports.addSource(ExportSource{Kind: ExportModule, Spec: ModuleSpecifier{Level: len(m[1]), Segments: splitDotted(m[2])}})
			}
			continue
		}

		var rhs string
		switch {
		case allAugAssignRe.MatchString(trimmed):
			rhs = allAugAssignRe.FindStringSubmatch(trimmed)[1]
		case allAssignRe.MatchString(trimmed):
			rhs = allAssignRe.FindStringSubmatch(trimmed)[1]
		default:
			continue
		}
		rhs = strings.TrimSpace(rhs)

		if m := allAttrRe.FindStringSubmatch(rhs); m != nil {
			segs := splitDotted(m[1])
			if len(segs) == 1 {
				exports.addSource(ExportSource{Kind: ExportAlias, Alias: segs[0]})
			} else {
				exports.addSource(ExportSource{Kind: ExportModule, Spec: ModuleSpecifier{Segments: segs}})
			}
			continue
		}
		if m := allNameRe.FindStringSubmatch(rhs); m != nil {
			exports.addSource(ExportSource{Kind: ExportAlias, Alias: m[1]})
			continue
		}
		for _, sm := range quotedStringRe.FindAllStringSubmatch(rhs, -1) {
			exports.addName(sm[1])
		}
	}
	return exports
}

func indentWidth(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 8
		} else {
			break
		}
	}
	return n
}
