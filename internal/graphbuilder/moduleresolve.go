package graphbuilder

import (
	"path/filepath"
	"strings"
)

// moduleComponents returns a file's module path components: its directory
// parts plus its stem, excluding a stem of "__init__" (spec.md §4.4.6).
func moduleComponents(relPath string) []string {
	dir := dirname(relPath)
	stem := strings.TrimSuffix(filepath.Base(relPath), ".py")
	comps := splitPath(dir)
	if stem != "__init__" {
		comps = append(append([]string{}, comps...), stem)
	}
	return comps
}

// resolveModuleSpec resolves a module specifier relative to sourceComponents
// against the set of known file ids, per spec.md §4.4.6.
func resolveModuleSpec(knownFiles map[string]bool, sourceComponents []string, level int, segments []string) (string, bool) {
	var comps []string
	if level > 0 {
		if level > len(sourceComponents) {
			return "", false
		}
		comps = append([]string{}, sourceComponents[:len(sourceComponents)-level]...)
	}
	for _, s := range segments {
		if s != "" {
			comps = append(comps, s)
		}
	}
	return finalizeModulePath(comps, knownFiles)
}

func finalizeModulePath(comps []string, knownFiles map[string]bool) (string, bool) {
	if len(comps) == 0 {
		return "", false
	}
	joined := strings.Join(comps, "/")
	fileCandidate := joined + ".py"
	if knownFiles[fileCandidate] {
		return fileCandidate, true
	}
	initCandidate := joined + "/__init__.py"
	if knownFiles[initCandidate] {
		return initCandidate, true
	}
	return "", false
}
