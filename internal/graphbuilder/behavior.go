package graphbuilder

import (
	"strings"

	"codegraph/internal/depgraph"
	"codegraph/internal/pyparse"
)

var fallbackScanKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "with": {}, "return": {}, "yield": {},
	"await": {}, "match": {}, "case": {}, "lambda": {}, "assert": {},
	"elif": {}, "else": {}, "try": {}, "except": {}, "finally": {},
}

// processBehaviorEdges builds Invoke/Inherit edges for every entity in every
// parsed file, using one alias map per file (spec.md §4.4.5-§4.4.6).
func (b *builder) processBehaviorEdges() {
	for relPath, pf := range b.parsed {
		entities := b.fileEntities[relPath]
		if len(entities) == 0 {
			continue
		}
		aliasMap := b.buildAliasMap(relPath)

		if pf.UsedFallback {
			b.processEntityBehaviorEdgesFallback(relPath, entities, aliasMap)
			continue
		}
		b.processEntityBehaviorEdges(relPath, entities, pf, aliasMap)
	}
}

func (b *builder) processEntityBehaviorEdges(relPath string, entities []depgraph.Index, pf pyparse.ParsedFile, aliasMap map[string][]depgraph.Index) {
	for _, idx := range entities {
		node, ok := b.graph.Node(idx)
		if !ok {
			continue
		}
		segs := b.entitySegments[idx]

		switch node.Kind {
		case depgraph.Function:
			var calls []pyparse.CallRef
			for _, c := range pf.Calls {
				if scopeEquals(c.Scope, segs) {
					calls = append(calls, c)
				}
			}
			for _, d := range pf.Decorators {
				if scopeEquals(d.Scope, segs) {
					calls = append(calls, pyparse.CallRef{Scope: d.Scope, Callee: d.Name})
				}
			}
			b.connectBehaviorEdges(relPath, idx, segs, aliasMap, calls, depgraph.Invoke)

		case depgraph.Class:
			var bases []string
			for _, base := range pf.BaseClasses {
				if scopeEquals(base.Scope, segs) {
					bases = append(bases, base.Name)
				}
			}
			b.connectBehaviorEdgesByName(relPath, idx, segs, aliasMap, bases, depgraph.Inherit)

			// __init__'s body is folded into the class's own scope by
			// CollectBehaviorRefs (it never pushes "__init__" onto the
			// scope stack), so its calls surface here with Scope == segs,
			// the same as any call written directly in the class body.
			var initCalls []pyparse.CallRef
			for _, c := range pf.Calls {
				if scopeEquals(c.Scope, segs) {
					initCalls = append(initCalls, c)
				}
			}
			if len(initCalls) > 0 {
				b.connectBehaviorEdges(relPath, idx, segs, aliasMap, initCalls, depgraph.Invoke)
			}
		}
	}
}

func scopeEquals(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// connectBehaviorEdges resolves each call's callee name through aliasMap and
// adds Invoke edges, applying the suppression rules from spec.md §4.4.6.
func (b *builder) connectBehaviorEdges(relPath string, callerIdx depgraph.Index, callerSegs []string, aliasMap map[string][]depgraph.Index, calls []pyparse.CallRef, kind depgraph.EdgeKind) {
	seen := map[depgraph.Index]struct{}{}
	for _, c := range calls {
		name := c.Callee
		if name == "" {
			continue
		}
		targets := b.resolveTargets(relPath, aliasMap, name)
		for _, targetIdx := range targets {
			b.tryAddBehaviorEdge(callerIdx, callerSegs, targetIdx, seen, kind)
		}
	}
}

func (b *builder) connectBehaviorEdgesByName(relPath string, callerIdx depgraph.Index, callerSegs []string, aliasMap map[string][]depgraph.Index, names []string, kind depgraph.EdgeKind) {
	seen := map[depgraph.Index]struct{}{}
	for _, name := range names {
		targets := b.resolveTargets(relPath, aliasMap, name)
		for _, targetIdx := range targets {
			b.tryAddBehaviorEdge(callerIdx, callerSegs, targetIdx, seen, kind)
		}
	}
}

func (b *builder) tryAddBehaviorEdge(callerIdx depgraph.Index, callerSegs []string, targetIdx depgraph.Index, seen map[depgraph.Index]struct{}, kind depgraph.EdgeKind) {
	if targetIdx == callerIdx {
		return
	}
	targetNode, ok := b.graph.Node(targetIdx)
	if !ok {
		return
	}

	if kind == depgraph.Invoke {
		targetSegs := b.entitySegments[targetIdx]
		if len(targetSegs) > 1 {
			if parentKind, parentSegs, ok := b.containParentInfo(targetIdx); ok && parentKind == depgraph.Function {
				if !segsHavePrefix(callerSegs, parentSegs) {
					return
				}
			}
		}
		switch targetNode.Kind {
		case depgraph.Function:
			// always allowed, subject to the nesting check above
		case depgraph.Class:
			if len(callerSegs) > 0 && callerSegs[0] == targetNode.DisplayName {
				return
			}
		default:
			return
		}
	}

	if _, dup := seen[targetIdx]; dup {
		return
	}
	key := edgeTriple{src: callerIdx, dst: targetIdx, kind: kind}
	if _, dup := b.behaviorEdgeCache[key]; dup {
		seen[targetIdx] = struct{}{}
		return
	}
	seen[targetIdx] = struct{}{}
	b.behaviorEdgeCache[key] = struct{}{}
	b.graph.AddEdge(callerIdx, targetIdx, kind)
}

func (b *builder) containParentInfo(idx depgraph.Index) (depgraph.NodeKind, []string, bool) {
	for _, e := range b.graph.EdgesTo(idx) {
		if e.Kind != depgraph.Contain {
			continue
		}
		parent, ok := b.graph.Node(e.Source)
		if !ok {
			return 0, nil, false
		}
		return parent.Kind, b.entitySegments[e.Source], true
	}
	return 0, nil, false
}

func segsHavePrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i := range prefix {
		if segs[i] != prefix[i] {
			return false
		}
	}
	return true
}

// processEntityBehaviorEdgesFallback handles files whose real grammar parse
// failed: only Function-kind entities get a best-effort Invoke scan over
// their source snippet (spec.md §4.4.6, "fallback text scan").
func (b *builder) processEntityBehaviorEdgesFallback(relPath string, entities []depgraph.Index, aliasMap map[string][]depgraph.Index) {
	source := b.fileSources[relPath]
	for _, idx := range entities {
		node, ok := b.graph.Node(idx)
		if !ok || node.Kind != depgraph.Function {
			continue
		}
		if !node.HasRange {
			continue
		}
		segs := b.entitySegments[idx]
		names := scanCalls(source, node.Range)
		seen := map[depgraph.Index]struct{}{}
		for _, name := range names {
			targets := b.resolveTargets(relPath, aliasMap, name)
			if len(targets) == 0 {
				continue
			}
			for _, targetIdx := range targets {
				b.tryAddBehaviorEdge(idx, segs, targetIdx, seen, depgraph.Invoke)
			}
		}
	}
}

// scanCalls best-effort-scans a line range for `name(` / `obj.attr(`
// patterns, stripping comments and a fixed set of control-flow keywords
// that can precede a parenthesis without being a call (spec.md §4.4.6).
func scanCalls(source []byte, rng depgraph.SourceRange) []string {
	lines := strings.Split(string(source), "\n")
	start := rng.StartLine - 1
	end := rng.EndLine
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return nil
	}
	if end > len(lines) {
		end = len(lines)
	}

	seen := map[string]struct{}{}
	var names []string
	for _, line := range lines[start:end] {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		for _, name := range scanIdentifierCalls(line) {
			if _, kw := fallbackScanKeywords[name]; kw {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func scanIdentifierCalls(line string) []string {
	var out []string
	var cur strings.Builder
	flush := func(hasParen bool) {
		if hasParen && cur.Len() > 0 {
			text := cur.String()
			name := text
			if dot := strings.LastIndexByte(text, '.'); dot >= 0 {
				name = text[dot+1:]
			}
			if name != "" && isIdentifierName(name) {
				out = append(out, name)
			}
		}
	}
	for i := 0; i < len(line); i++ {
		r := rune(line[i])
		switch {
		case isIdentChar(r) || r == '.':
			cur.WriteRune(r)
		case r == '(':
			flush(true)
			cur.Reset()
		default:
			cur.Reset()
		}
	}
	return out
}

func isIdentChar(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if i == 0 {
				return false
			}
			continue
		}
		if !isIdentChar(r) {
			return false
		}
	}
	return true
}
