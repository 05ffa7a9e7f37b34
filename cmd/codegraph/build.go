package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"codegraph/internal/graphbuilder"
)

var buildFormat string

var buildCmd = &cobra.Command{
	Use:   "build [repo-root]",
	Short: "Build the dependency graph and sparse search index",
	Long: `Walks a Python repository, assembles the typed dependency graph
(directories, files, classes, functions, and their contain/import/invoke/
inherit relationships), and builds the two-tier sparse search index over it.

If repo-root is omitted, the current directory is used.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(buildCmd)
}

// BuildResponseCLI is the CLI-facing shape of one build_graph +
// build_sparse_index run (spec.md §6).
type BuildResponseCLI struct {
	RepoRoot     string                  `json:"repoRoot"`
	IndexBaseDir string                  `json:"indexBaseDir"`
	Stats        graphbuilder.BuildStats `json:"stats"`
	DurationMs   int64                   `json:"durationMs"`
}

func runBuild(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger()

	repoArg := ""
	if len(args) == 1 {
		repoArg = args[0]
	}
	repoRoot := mustGetRepoRoot(repoArg)

	ctx := context.Background()
	idx, stats, indexBaseDir, err := buildIndex(ctx, repoRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	resp := &BuildResponseCLI{
		RepoRoot:     repoRoot,
		IndexBaseDir: indexBaseDir,
		Stats:        stats,
		DurationMs:   time.Since(start).Milliseconds(),
	}

	out, err := FormatResponse(resp, OutputFormat(buildFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
