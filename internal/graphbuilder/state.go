package graphbuilder

import (
	"path/filepath"
	"strings"

	"codegraph/internal/depgraph"
	"codegraph/internal/pyparse"
)

// edgeTriple identifies a (caller, target, kind) behavior edge for dedup.
type edgeTriple struct {
	src  depgraph.Index
	dst  depgraph.Index
	kind depgraph.EdgeKind
}

type deferredAttrImport struct {
	sourceFile string
	sourceIdx  depgraph.Index
	modulePath string
	name       string
	alias      string
}

type pendingWildcard struct {
	sourceFile string
	sourceIdx  depgraph.Index
	modulePath string
}

// builder holds all build-local state; it owns the graph exclusively until
// the build finishes (spec.md §5, §9 "each builder owns its caches").
type builder struct {
	repoRoot string
	cfg      Config

	graph *depgraph.Graph

	fileIndex  map[string]depgraph.Index // file id -> node index
	dirIndex   map[string]depgraph.Index // directory id -> node index
	knownFiles map[string]bool           // file id -> true, for module resolution

	fileSources map[string][]byte
	parsed      map[string]pyparse.ParsedFile

	fileSymbols    map[string]map[string]depgraph.Index // per file: name/suffix -> entity index
	fileEntities   map[string][]depgraph.Index           // per file, in declaration order
	entitySegments map[depgraph.Index][]string

	moduleAliases map[string]map[string]string // per file: alias -> target file id

	resolvedExports map[string]map[string]struct{} // module file id -> export name set
	wildcardImports map[string][]string            // file -> wildcard-imported module file ids

	deferredAttr []deferredAttrImport
	pendingWild  []pendingWildcard

	behaviorEdgeCache map[edgeTriple]struct{}

	stats BuildStats
}

func newBuilder(repoRoot string, cfg Config) *builder {
	return &builder{
		repoRoot:          repoRoot,
		cfg:               cfg,
		graph:             depgraph.New(),
		fileIndex:         map[string]depgraph.Index{},
		dirIndex:          map[string]depgraph.Index{},
		knownFiles:        map[string]bool{},
		fileSources:       map[string][]byte{},
		parsed:            map[string]pyparse.ParsedFile{},
		fileSymbols:       map[string]map[string]depgraph.Index{},
		fileEntities:      map[string][]depgraph.Index{},
		entitySegments:    map[depgraph.Index][]string{},
		moduleAliases:     map[string]map[string]string{},
		resolvedExports:   map[string]map[string]struct{}{},
		wildcardImports:   map[string][]string{},
		behaviorEdgeCache: map[edgeTriple]struct{}{},
	}
}

// ensureDirectoryNode creates (or returns) the directory node for id, which
// is "." for the repo root or a repo-relative POSIX path otherwise. Ancestor
// directories are created lazily and connected via Contain (spec.md §4.4.2).
func (b *builder) ensureDirectoryNode(id string) depgraph.Index {
	if idx, ok := b.dirIndex[id]; ok {
		return idx
	}
	display := id
	if id != "." {
		display = filepath.Base(id)
	}
	idx := b.graph.AddNode(depgraph.NewDirectoryNode(id, display, filepath.Join(b.repoRoot, filepath.FromSlash(id))))
	b.dirIndex[id] = idx
	if id != "." {
		b.stats.Directories++
		b.graph.AddEdge(b.ensureDirectoryNode(dirname(id)), idx, depgraph.Contain)
	} else {
		b.stats.Directories++
	}
	return idx
}

func (b *builder) ensureFileNode(relPath, absPath string) depgraph.Index {
	if idx, ok := b.fileIndex[relPath]; ok {
		return idx
	}
	display := filepath.Base(relPath)
	idx := b.graph.AddNode(depgraph.NewFileNode(relPath, display, absPath))
	b.fileIndex[relPath] = idx
	b.knownFiles[relPath] = true
	b.stats.Files++
	parent := b.ensureDirectoryNode(dirname(relPath))
	b.graph.AddEdge(parent, idx, depgraph.Contain)
	return idx
}

// addEntities creates graph nodes for a file's parsed entities, wiring
// Contain edges to the lexical parent and populating the per-file symbol
// table (spec.md §4.4.2, §4.4.3).
func (b *builder) addEntities(relPath string, fileIdx depgraph.Index, entities []pyparse.ParsedEntity, source []byte) {
	if len(entities) == 0 {
		return
	}
	fileID := relPath
	symbolTable := map[string]depgraph.Index{}
	var entityList []depgraph.Index
	localLookup := map[string]depgraph.Index{}

	for _, e := range entities {
		suffix := e.QualifiedName("::")
		nodeID := fileID + "::" + suffix
		display := e.Identifier()
		var rng *depgraph.SourceRange
		if e.Range != nil {
			rng = e.Range
		}
		node := depgraph.NewEntityNode(nodeID, e.Kind, display, absPathFor(b.repoRoot, relPath), rng)
		node.Attributes["source_snippet"] = sourceSnippet(source, rng)
		idx := b.graph.AddNode(node)
		b.entitySegments[idx] = e.Segments
		entityList = append(entityList, idx)

		var parentIdx depgraph.Index
		if len(e.Segments) == 1 {
			parentIdx = fileIdx
		} else {
			parentSuffix := strings.Join(e.Segments[:len(e.Segments)-1], "::")
			parentID := fileID + "::" + parentSuffix
			if p, ok := localLookup[parentID]; ok {
				parentIdx = p
			} else {
				parentIdx = fileIdx
			}
		}
		b.graph.AddEdge(parentIdx, idx, depgraph.Contain)
		localLookup[nodeID] = idx
		b.stats.Entities++

		if display != "" {
			if _, exists := symbolTable[display]; !exists {
				symbolTable[display] = idx
			}
		}
		if _, exists := symbolTable[suffix]; !exists {
			symbolTable[suffix] = idx
		}
	}

	b.fileSymbols[relPath] = symbolTable
	b.fileEntities[relPath] = entityList
}

func absPathFor(repoRoot, relPath string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(relPath))
}

func sourceSnippet(source []byte, rng *depgraph.SourceRange) string {
	if rng == nil {
		return ""
	}
	lines := strings.Split(string(source), "\n")
	start := rng.StartLine - 1
	end := rng.EndLine
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	snippet := strings.Join(lines[start:end], "\n")
	const maxLen = 4096
	if len(snippet) > maxLen {
		snippet = snippet[:maxLen]
	}
	return snippet
}
