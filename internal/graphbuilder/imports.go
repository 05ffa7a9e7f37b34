package graphbuilder

import (
	"sort"
	"strings"

	"codegraph/internal/depgraph"
	"codegraph/internal/pyparse"
)

const maxStageBRounds = 4

// processImports runs Stage A (immediate resolution) for every file's import
// directives, then Stage B (bounded fixpoint retries) for whatever Stage A
// could not resolve immediately (spec.md §4.4.4). Files are visited in a
// fixed (path-sorted) order, and direct imports resolve across every file
// before any wildcard import is attempted, so a wildcard's alias-map lookup
// always sees its target module's own direct imports already wired.
func (b *builder) processImports() {
	relPaths := make([]string, 0, len(b.parsed))
	for relPath := range b.parsed {
		relPaths = append(relPaths, relPath)
	}
	sort.Strings(relPaths)

	for _, relPath := range relPaths {
		pf := b.parsed[relPath]
		srcIdx := b.fileIndex[relPath]
		srcComponents := moduleComponents(relPath)
		for _, d := range pf.Imports {
			if d.Kind == pyparse.DirectiveModule {
				b.processModuleImport(relPath, srcIdx, srcComponents, d)
			} else {
				b.processFromImportDirect(relPath, srcIdx, srcComponents, d)
			}
		}
	}
	for _, relPath := range relPaths {
		pf := b.parsed[relPath]
		srcIdx := b.fileIndex[relPath]
		srcComponents := moduleComponents(relPath)
		for _, d := range pf.Imports {
			if d.Kind == pyparse.DirectiveFromModule {
				b.processFromImportWildcard(relPath, srcIdx, srcComponents, d)
			}
		}
	}
	b.resolveDeferredAttributeImports()
	b.resolvePendingWildcardExports()
}

func (b *builder) processModuleImport(relPath string, srcIdx depgraph.Index, srcComponents []string, d pyparse.ImportDirective) {
	target, ok := resolveModuleSpec(b.knownFiles, srcComponents, d.Module.Level, d.Module.Segments)
	if !ok {
		return
	}
	alias := d.Alias
	if alias == "" && len(d.Module.Segments) > 0 {
		alias = d.Module.Segments[len(d.Module.Segments)-1]
	}
	b.addImportEdge(relPath, srcIdx, target, alias)
	b.recordModuleAlias(relPath, alias, target)
}

// processFromImportDirect handles the non-wildcard entities of a `from X
// import ...` directive: submodule imports and attribute imports.
func (b *builder) processFromImportDirect(relPath string, srcIdx depgraph.Index, srcComponents []string, d pyparse.ImportDirective) {
	baseModule, baseOK := resolveModuleSpec(b.knownFiles, srcComponents, d.Module.Level, d.Module.Segments)

	for _, e := range d.Entities {
		if e.IsWildcard {
			continue
		}

		extended := pyparse.ModuleSpecifier{Level: d.Module.Level, Segments: append(append([]string{}, d.Module.Segments...), splitEntitySegments(e.Name)...)}
		if sub, ok := resolveModuleSpec(b.knownFiles, srcComponents, extended.Level, extended.Segments); ok {
			alias := e.Alias
			if alias == "" {
				alias = e.Name
			}
			b.addImportEdge(relPath, srcIdx, sub, alias)
			b.recordModuleAlias(relPath, alias, sub)
			continue
		}

		if baseOK {
			b.tryAddAttributeImportEdge(relPath, srcIdx, baseModule, e.Name, e.Alias)
		}
	}
}

// processFromImportWildcard handles the wildcard entity of a `from X import
// *` directive, run only after every file's direct imports have resolved.
func (b *builder) processFromImportWildcard(relPath string, srcIdx depgraph.Index, srcComponents []string, d pyparse.ImportDirective) {
	baseModule, baseOK := resolveModuleSpec(b.knownFiles, srcComponents, d.Module.Level, d.Module.Segments)
	if !baseOK {
		return
	}
	for _, e := range d.Entities {
		if !e.IsWildcard {
			continue
		}
		b.addImportEdge(relPath, srcIdx, baseModule, "")
		b.expandWildcardImport(relPath, baseModule)
		if !b.addWildcardExportEdges(relPath, srcIdx, baseModule) {
			b.pendingWild = append(b.pendingWild, pendingWildcard{sourceFile: relPath, sourceIdx: srcIdx, modulePath: baseModule})
		}
	}
}

func splitEntitySegments(name string) []string {
	return strings.Split(name, ".")
}

func (b *builder) addImportEdge(relPath string, srcIdx depgraph.Index, targetFile, alias string) {
	targetIdx, ok := b.fileIndex[targetFile]
	if !ok {
		return
	}
	b.graph.AddEdgeWithAlias(srcIdx, targetIdx, depgraph.Import, alias)
}

func (b *builder) recordModuleAlias(relPath, alias, targetFile string) {
	if alias == "" {
		return
	}
	m := b.moduleAliases[relPath]
	if m == nil {
		m = map[string]string{}
		b.moduleAliases[relPath] = m
	}
	if _, exists := m[alias]; !exists {
		m[alias] = targetFile
	}
	stem := strings.TrimSuffix(lastPathSegment(targetFile), ".py")
	if _, exists := m[stem]; !exists {
		m[stem] = targetFile
	}
	delete(b.resolvedExports, relPath) // invalidate cache, mirrors record_module_alias
}

func lastPathSegment(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

func (b *builder) expandWildcardImport(relPath, modulePath string) {
	for _, m := range b.wildcardImports[relPath] {
		if m == modulePath {
			return
		}
	}
	b.wildcardImports[relPath] = append(b.wildcardImports[relPath], modulePath)
}

// tryAddAttributeImportEdge attempts immediate resolution of `from module
// import name` where name is not itself a submodule; on failure it defers
// to Stage B (spec.md §4.4.4).
func (b *builder) tryAddAttributeImportEdge(relPath string, srcIdx depgraph.Index, modulePath, name, alias string) {
	if target, ok := b.resolveAttributeTarget(modulePath, name); ok {
		aliasName := alias
		if aliasName == "" {
			aliasName = name
		}
		b.graph.AddEdgeWithAlias(srcIdx, target, depgraph.Import, aliasName)
		return
	}
	b.deferredAttr = append(b.deferredAttr, deferredAttrImport{sourceFile: relPath, sourceIdx: srcIdx, modulePath: modulePath, name: name, alias: alias})
}

// resolveAttributeTarget resolves `module_path::name` to a node index: a
// direct global id lookup, then the module's own symbol table, then a
// recursive alias-map fallback (spec.md §4.4.4).
func (b *builder) resolveAttributeTarget(modulePath, name string) (depgraph.Index, bool) {
	dotted := strings.ReplaceAll(name, ".", "::")
	globalID := modulePath + "::" + dotted
	if idx, ok := b.graph.GetIndex(globalID); ok {
		return idx, true
	}
	if syms, ok := b.fileSymbols[modulePath]; ok {
		if idx, ok := syms[name]; ok {
			return idx, true
		}
	}
	aliasMap := b.buildAliasMap(modulePath)
	targets := b.resolveTargets(modulePath, aliasMap, name)
	if len(targets) > 0 {
		return targets[0], true
	}
	return 0, false
}

func (b *builder) resolveDeferredAttributeImports() {
	pending := b.deferredAttr
	b.deferredAttr = nil
	for round := 0; round < maxStageBRounds && len(pending) > 0; round++ {
		var remaining []deferredAttrImport
		progressed := false
		for _, d := range pending {
			if target, ok := b.resolveAttributeTarget(d.modulePath, d.name); ok {
				alias := d.alias
				if alias == "" {
					alias = d.name
				}
				b.graph.AddEdgeWithAlias(d.sourceIdx, target, depgraph.Import, alias)
				progressed = true
				continue
			}
			remaining = append(remaining, d)
		}
		pending = remaining
		if !progressed {
			break
		}
	}
	// Residual attribute imports degrade to a file->module Import edge,
	// preserving the requested local name as the alias.
	for _, d := range pending {
		alias := d.alias
		if alias == "" {
			alias = d.name
		}
		b.addImportEdge(d.sourceFile, d.sourceIdx, d.modulePath, alias)
	}
}

func (b *builder) resolvePendingWildcardExports() {
	pending := b.pendingWild
	b.pendingWild = nil
	for round := 0; round < maxStageBRounds && len(pending) > 0; round++ {
		var remaining []pendingWildcard
		progressed := false
		for _, w := range pending {
			if b.addWildcardExportEdges(w.sourceFile, w.sourceIdx, w.modulePath) {
				progressed = true
				continue
			}
			remaining = append(remaining, w)
		}
		pending = remaining
		if !progressed {
			break
		}
	}
	// Unresolved wildcard exports are silently dropped; no degrade edge.
}

// addWildcardExportEdges only acts if modulePath has an explicit export
// contract (an __all__ or its own re-export source); otherwise it returns
// false without enqueueing anything itself (the caller enqueues for Stage
// B). This mirrors the original's has_explicit_exports gate exactly, and is
// intentionally narrower than resolveExports' public-symbols fallback used
// for behavior-edge alias maps (spec.md §4.4.5).
func (b *builder) addWildcardExportEdges(relPath string, srcIdx depgraph.Index, modulePath string) bool {
	exportsInfo := b.parsed[modulePath].Exports
	if exportsInfo == nil || exportsInfo.IsEmpty() {
		return false
	}
	names := b.resolveExports(modulePath)
	for name := range names {
		if target, ok := b.resolveAttributeTarget(modulePath, name); ok {
			b.graph.AddEdgeWithAlias(srcIdx, target, depgraph.Import, "")
		}
	}
	return true
}

// resolveExports computes the full set of names modulePath exports,
// recursively following re-export sources, with a cycle guard. If the
// module has no names and no sources at all, it falls back to every
// top-level symbol in the module's own symbol table (spec.md §4.4.5).
func (b *builder) resolveExports(modulePath string) map[string]struct{} {
	if cached, ok := b.resolvedExports[modulePath]; ok {
		return cached
	}
	result := map[string]struct{}{}
	b.resolveExportsRecursive(modulePath, result, map[string]struct{}{})
	b.resolvedExports[modulePath] = result
	return result
}

func (b *builder) resolveExportsRecursive(modulePath string, out map[string]struct{}, visited map[string]struct{}) {
	if _, seen := visited[modulePath]; seen {
		return
	}
	visited[modulePath] = struct{}{}

	info := b.parsed[modulePath].Exports
	added := false
	if info != nil {
		for name := range info.Names {
			out[name] = struct{}{}
			added = true
		}
		for _, src := range info.Sources {
			target, ok := b.resolveExportSource(modulePath, src)
			if !ok {
				continue
			}
			added = true
			b.resolveExportsRecursive(target, out, visited)
		}
	}
	if !added {
		for name := range b.fileSymbols[modulePath] {
			if !strings.Contains(name, "::") {
				out[name] = struct{}{}
			}
		}
	}
}

func (b *builder) resolveExportSource(modulePath string, src pyparse.ExportSource) (string, bool) {
	switch src.Kind {
	case pyparse.ExportModule:
		return resolveModuleSpec(b.knownFiles, moduleComponents(modulePath), src.Spec.Level, src.Spec.Segments)
	case pyparse.ExportAlias:
		if m, ok := b.moduleAliases[modulePath]; ok {
			if target, ok := m[src.Alias]; ok {
				return target, true
			}
		}
		return resolveModuleSpec(b.knownFiles, moduleComponents(modulePath), 0, []string{src.Alias})
	}
	return "", false
}

// buildAliasMap collects every name reachable from modulePath's own symbol
// table, its outbound Import edges (transitively through File targets), and
// its wildcard-imported modules' exports (spec.md §4.4.5, "alias map").
func (b *builder) buildAliasMap(modulePath string) map[string][]depgraph.Index {
	aliasMap := map[string][]depgraph.Index{}
	b.collectCalleeCandidates(modulePath, aliasMap, map[string]struct{}{})

	for _, wildcardModule := range b.wildcardImports[modulePath] {
		names := b.resolveExports(wildcardModule)
		for name := range names {
			if target, ok := b.resolveAttributeTarget(wildcardModule, name); ok {
				insertAlias(aliasMap, name, target)
			}
		}
	}
	return aliasMap
}

func (b *builder) collectCalleeCandidates(modulePath string, aliasMap map[string][]depgraph.Index, visited map[string]struct{}) {
	if _, seen := visited[modulePath]; seen {
		return
	}
	visited[modulePath] = struct{}{}

	for name, idx := range b.fileSymbols[modulePath] {
		insertAlias(aliasMap, name, idx)
	}

	fileIdx, ok := b.fileIndex[modulePath]
	if !ok {
		return
	}
	for _, e := range b.graph.EdgesFrom(fileIdx) {
		if e.Kind != depgraph.Import {
			continue
		}
		target, ok := b.graph.Node(e.Target)
		if !ok {
			continue
		}
		if e.Alias != "" {
			insertAlias(aliasMap, e.Alias, e.Target)
		}
		switch target.Kind {
		case depgraph.File:
			insertAlias(aliasMap, strings.TrimSuffix(lastPathSegment(target.ID), ".py"), e.Target)
			b.collectCalleeCandidates(target.ID, aliasMap, visited)
		case depgraph.Class:
			insertAlias(aliasMap, target.DisplayName, e.Target)
			b.collectEnclosedEntities(e.Target, aliasMap)
		case depgraph.Function:
			insertAlias(aliasMap, target.DisplayName, e.Target)
		}
	}
}

func (b *builder) collectEnclosedEntities(parent depgraph.Index, aliasMap map[string][]depgraph.Index) {
	for _, e := range b.graph.EdgesFrom(parent) {
		if e.Kind != depgraph.Contain {
			continue
		}
		child, ok := b.graph.Node(e.Target)
		if !ok {
			continue
		}
		if child.Kind != depgraph.Class && child.Kind != depgraph.Function {
			continue
		}
		insertAlias(aliasMap, child.DisplayName, e.Target)
		b.collectEnclosedEntities(e.Target, aliasMap)
	}
}

func insertAlias(aliasMap map[string][]depgraph.Index, name string, idx depgraph.Index) {
	for _, existing := range aliasMap[name] {
		if existing == idx {
			return
		}
	}
	aliasMap[name] = append(aliasMap[name], idx)
}

// resolveTargets unions alias-map candidates for name with the module's own
// direct symbol table entry, if not already present.
func (b *builder) resolveTargets(modulePath string, aliasMap map[string][]depgraph.Index, name string) []depgraph.Index {
	targets := append([]depgraph.Index{}, aliasMap[name]...)
	if idx, ok := b.fileSymbols[modulePath][name]; ok {
		found := false
		for _, t := range targets {
			if t == idx {
				found = true
				break
			}
		}
		if !found {
			targets = append(targets, idx)
		}
	}
	return targets
}
