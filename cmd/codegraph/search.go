package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codegraph/internal/depgraph"
	"codegraph/internal/sparseindex"
)

var (
	searchRepoRoot string
	searchKinds    string
	searchLimit    int
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the dependency graph's name and content index",
	Long: `Searches for files, classes, and functions matching a query string.
Name matches cover classes and functions; files are found through BM25.
Directories are not indexed by either phase.

Search phases, in order, each filling what the previous left of the limit:
  - exact name match
  - prefix name match
  - BM25 full-text match over synthesized per-entity documents

Examples:
  codegraph search handleRequest
  codegraph search handle --kinds=function,class
  codegraph search parse --repo-root ./myrepo --limit 10`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchRepoRoot, "repo-root", "", "Repository root (default: current directory)")
	searchCmd.Flags().StringVar(&searchKinds, "kinds", "", "Filter by kind (comma-separated: directory,file,class,function)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(searchCmd)
}

// SearchResponseCLI is the CLI-facing shape of one sparse-index search
// (spec.md §6).
type SearchResponseCLI struct {
	Query        string                     `json:"query"`
	TotalMatches int                        `json:"totalMatches"`
	Results      []sparseindex.SearchResult `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) {
	logger := newLogger()
	queryStr := args[0]

	repoRoot := mustGetRepoRoot(searchRepoRoot)
	ctx := context.Background()

	idx, _, _, err := buildIndex(ctx, repoRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	kindFilter, err := parseKindFilter(searchKinds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results, err := idx.Search(ctx, queryStr, searchLimit, kindFilter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching: %v\n", err)
		os.Exit(1)
	}

	resp := &SearchResponseCLI{
		Query:        queryStr,
		TotalMatches: len(results),
		Results:      results,
	}

	out, err := FormatResponse(resp, OutputFormat(searchFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// parseKindFilter converts a comma-separated --kinds flag into the
// map[depgraph.NodeKind]bool filter sparseindex.Search expects. An empty
// string means no filter.
func parseKindFilter(kinds string) (map[depgraph.NodeKind]bool, error) {
	if kinds == "" {
		return nil, nil
	}
	filter := make(map[depgraph.NodeKind]bool)
	for _, raw := range strings.Split(kinds, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "directory":
			filter[depgraph.Directory] = true
		case "file":
			filter[depgraph.File] = true
		case "class":
			filter[depgraph.Class] = true
		case "function":
			filter[depgraph.Function] = true
		default:
			return nil, fmt.Errorf("unknown kind %q (expected directory, file, class, or function)", raw)
		}
	}
	return filter, nil
}
