// Package graphbuilder implements C4, the heterogeneous dependency graph
// builder described in spec.md §4.4: it walks a Python repository, parses
// each file via internal/pyparse, and assembles a depgraph.Graph of
// directories, files, classes, and functions connected by Contain, Import,
// Invoke, and Inherit edges.
package graphbuilder

import (
	"fmt"
	"os"

	"codegraph/internal/depgraph"
	"codegraph/internal/pyparse"
)

// BuildGraph walks repoRoot, parses every discovered Python file, and
// assembles the dependency graph per spec.md §6's build_graph contract.
func BuildGraph(repoRoot string, cfg Config) (*depgraph.Graph, BuildStats, error) {
	info, err := os.Stat(repoRoot)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("graphbuilder: stat repo root: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildStats{}, fmt.Errorf("graphbuilder: repo root %q is not a directory", repoRoot)
	}

	files, err := walkRepo(repoRoot, cfg)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("graphbuilder: walk repo: %w", err)
	}

	b := newBuilder(repoRoot, cfg)

	b.ensureDirectoryNode(".")
	for _, dir := range cfg.RequiredDirectories {
		b.ensureDirectoryNode(toPosix(dir))
	}

	for _, f := range files {
		b.knownFiles[f.relPath] = true
	}

	for _, f := range files {
		source, err := os.ReadFile(f.absPath)
		if err != nil {
			return nil, BuildStats{}, fmt.Errorf("graphbuilder: read %s: %w", f.relPath, err)
		}
		fileIdx := b.ensureFileNode(f.relPath, f.absPath)
		b.fileSources[f.relPath] = source

		pf := pyparse.ParseSource(source)
		b.parsed[f.relPath] = pf
		b.addEntities(f.relPath, fileIdx, pf.Entities, source)
	}

	b.processImports()
	b.processBehaviorEdges()

	if cfg.AllowedEdges != nil {
		seen := make(map[EdgeKey]int, len(cfg.AllowedEdges))
		b.graph.FilterEdges(func(e depgraph.Edge) bool {
			src, sok := b.graph.Node(e.Source)
			dst, dok := b.graph.Node(e.Target)
			if !sok || !dok {
				return true
			}
			key := EdgeKey{SourceID: src.ID, TargetID: dst.ID, Kind: e.Kind}
			limit, allowed := cfg.AllowedEdges[key]
			if !allowed {
				return false
			}
			if seen[key] >= limit {
				return false
			}
			seen[key]++
			return true
		})
	}

	return b.graph, b.stats, nil
}
