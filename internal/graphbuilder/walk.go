package graphbuilder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// walkResult is the repo-relative POSIX path of one discovered Python file.
type walkResult struct {
	relPath string // POSIX-style, relative to repo root, e.g. "pkg/core.py"
	absPath string
}

func walkRepo(repoRoot string, cfg Config) ([]walkResult, error) {
	var results []walkResult
	allowed := cfg.allowedSet()

	err := filepath.WalkDir(repoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == repoRoot {
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if !cfg.FollowSymlinks {
				if info, statErr := os.Lstat(path); statErr == nil && info.Mode()&os.ModeSymlink != 0 {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".py") {
			return nil
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = toPosix(rel)
		if allowed != nil {
			if _, ok := allowed[rel]; !ok {
				return nil
			}
		}
		results = append(results, walkResult{relPath: rel, absPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].relPath < results[j].relPath })

	if cfg.MaxPythonFiles > 0 && len(results) > cfg.MaxPythonFiles {
		results = results[:cfg.MaxPythonFiles]
	}
	return results, nil
}

func toPosix(p string) string {
	return strings.ReplaceAll(p, string(filepath.Separator), "/")
}

// dirname returns the POSIX parent directory of a repo-relative path, or "."
// if p is already top-level.
func dirname(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return "."
	}
	return p[:idx]
}

// splitPath splits a repo-relative POSIX path into its components.
func splitPath(p string) []string {
	if p == "." || p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
