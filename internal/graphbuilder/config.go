// Package graphbuilder implements the Graph Builder (C4): it walks a Python
// repository, parses every source file, assembles the heterogeneous
// dependency graph described in internal/depgraph, and resolves imports and
// behavioral edges across files (spec.md §4.4).
package graphbuilder

import "codegraph/internal/depgraph"

// skipDirs is the fixed directory skip list from spec.md §4.4.1.
var skipDirs = map[string]struct{}{
	".git":          {},
	".github":       {},
	".venv":         {},
	"venv":          {},
	"__pycache__":   {},
	".pytest_cache": {},
	"node_modules":  {},
	"site-packages": {},
	".tox":          {},
	".eggs":         {},
	"build":         {},
	"dist":          {},
	".mypy_cache":   {},
	".hypothesis":   {},
}

// EdgeKey identifies one (source-id, target-id, kind) triple for the
// allowed-edges post-filter (spec.md §4.4.9).
type EdgeKey struct {
	SourceID string
	TargetID string
	Kind     depgraph.EdgeKind
}

// Config controls one build run.
type Config struct {
	// FollowSymlinks is accepted but has no effect: the walk uses
	// filepath.WalkDir, which never descends into symlinked directories,
	// whether the flag is set or not. Default off.
	FollowSymlinks bool

	// MaxPythonFiles caps the number of .py files processed; zero means
	// unlimited.
	MaxPythonFiles int

	// AllowedPythonFiles, when non-empty, restricts the walk to these
	// repo-relative paths (exact match).
	AllowedPythonFiles []string

	// RequiredDirectories must exist as directory nodes even if they
	// contain no Python files.
	RequiredDirectories []string

	// AllowedEdges, when non-nil, retains at most the recorded count per
	// key across Import/Invoke/Inherit edges; Contain edges are never
	// filtered. A key absent from the map drops all matching edges.
	AllowedEdges map[EdgeKey]int
}

func (c Config) allowedSet() map[string]struct{} {
	if len(c.AllowedPythonFiles) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(c.AllowedPythonFiles))
	for _, p := range c.AllowedPythonFiles {
		out[p] = struct{}{}
	}
	return out
}

// BuildStats summarizes one completed build, per spec.md §6.
type BuildStats struct {
	Directories int `json:"directories"`
	Files       int `json:"files"`
	Entities    int `json:"entities"`
}
