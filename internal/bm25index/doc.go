// Package bm25index implements the BM25 Index (C6): a full-text index over
// per-entity and per-file-chunk documents, backed by SQLite's FTS5 virtual
// tables (spec.md §4.6).
package bm25index

import (
	"fmt"
	"sort"
	"strings"

	"codegraph/internal/depgraph"
	"codegraph/internal/tokenize"
)

// Document is one row synthesized for the BM25 index.
type Document struct {
	EntityID string
	Name     string
	Path     string
	Kind     string
	Content  string
}

const (
	chunkWindowLines = 80
	chunkOverlap     = 20
	minChunkDensity  = 120
	maxSnippetBytes  = 4096
)

// indexableKinds is the set of node kinds the BM25 index admits
// (spec.md §4.6 "Which nodes are indexed"); Directory nodes are excluded.
var indexableKinds = map[depgraph.NodeKind]bool{
	depgraph.Class:    true,
	depgraph.Function: true,
	depgraph.File:     true,
}

// SynthesizeDocuments walks every indexable node of graph and produces the
// BM25 documents it contributes: one primary document per node, plus
// overlapping chunk documents for File nodes carrying a source_snippet
// attribute (spec.md §4.6).
func SynthesizeDocuments(graph *depgraph.Graph, tok *tokenize.Tokenizer) []Document {
	if tok == nil {
		tok = tokenize.WithDefaultStopWords()
	}
	var docs []Document
	for _, idx := range graph.Nodes() {
		node, ok := graph.Node(idx)
		if !ok || !indexableKinds[node.Kind] {
			continue
		}
		docs = append(docs, synthesizeNodeDocument(graph, idx, node, tok))
		if node.Kind == depgraph.File {
			if snippet, ok := node.Attributes["source_snippet"]; ok && snippet != "" {
				docs = append(docs, chunkFileSnippet(node.ID, snippet)...)
			}
		}
	}
	return docs
}

func synthesizeNodeDocument(graph *depgraph.Graph, idx depgraph.Index, node *depgraph.Node, tok *tokenize.Tokenizer) Document {
	var content strings.Builder

	writeTokenizable := func(s string) {
		if s == "" {
			return
		}
		content.WriteString(s)
		content.WriteString(" ")
		content.WriteString(strings.Join(tok.Tokenize(s), " "))
		content.WriteString(" ")
	}

	writeTokenizable(node.DisplayName)
	writeTokenizable(node.ID)
	writeTokenizable(node.FilePath)

	for _, key := range sortedAttrKeys(node.Attributes) {
		value := node.Attributes[key]
		if value == "" {
			continue
		}
		content.WriteString(value)
		content.WriteString(" ")
		if key == "source_snippet" {
			content.WriteString(extractComments(value, maxSnippetBytes))
			content.WriteString(" ")
		}
	}

	if node.Kind == depgraph.File {
		for _, edge := range graph.EdgesFrom(idx) {
			if edge.Kind != depgraph.Contain {
				continue
			}
			child, ok := graph.Node(edge.Target)
			if !ok {
				continue
			}
			writeTokenizable(child.DisplayName)
			writeTokenizable(child.ID)
			for _, key := range sortedAttrKeys(child.Attributes) {
				content.WriteString(child.Attributes[key])
				content.WriteString(" ")
			}
		}
	}

	return Document{
		EntityID: node.ID,
		Name:     node.DisplayName,
		Path:     node.FilePath,
		Kind:     node.Kind.String(),
		Content:  content.String(),
	}
}

func sortedAttrKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extractComments pulls '#' comment text out of a source snippet, bounded
// to maxBytes (spec.md §4.6 "the extracted # comment text ... is appended").
func extractComments(snippet string, maxBytes int) string {
	var b strings.Builder
	for _, line := range strings.Split(snippet, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			comment := strings.TrimSpace(line[idx+1:])
			if comment == "" {
				continue
			}
			if b.Len()+len(comment)+1 > maxBytes {
				break
			}
			b.WriteString(comment)
			b.WriteString(" ")
		}
	}
	return b.String()
}

// chunkFileSnippet splits snippet into 80-line windows with a 20-line
// overlap, merging low-density chunks into the preceding chunk
// (spec.md §4.6 "File chunking").
func chunkFileSnippet(fileID, snippet string) []Document {
	lines := strings.Split(snippet, "\n")
	if len(lines) == 0 {
		return nil
	}

	type window struct {
		start, end int // 1-based, inclusive
	}
	var windows []window
	step := chunkWindowLines - chunkOverlap
	if step <= 0 {
		step = chunkWindowLines
	}
	for start := 0; start < len(lines); start += step {
		end := start + chunkWindowLines
		if end > len(lines) {
			end = len(lines)
		}
		windows = append(windows, window{start: start + 1, end: end})
		if end == len(lines) {
			break
		}
	}

	var docs []Document
	for _, w := range windows {
		content := strings.Join(lines[w.start-1:w.end], "\n")
		density := nonWhitespaceCount(content)
		if density < minChunkDensity && len(docs) > 0 {
			prev := docs[len(docs)-1]
			docs[len(docs)-1] = Document{
				EntityID: prev.EntityID,
				Name:     prev.Name,
				Path:     prev.Path,
				Kind:     prev.Kind,
				Content:  prev.Content + "\n" + content,
			}
			continue
		}
		docs = append(docs, Document{
			EntityID: fmt.Sprintf("%s::chunk:%d-%d", fileID, w.start, w.end),
			Name:     "",
			Path:     fileID,
			Kind:     depgraph.File.String(),
			Content:  content,
		})
	}
	return docs
}

func nonWhitespaceCount(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			n++
		}
	}
	return n
}
