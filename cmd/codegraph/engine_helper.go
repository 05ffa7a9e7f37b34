package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"codegraph/internal/config"
	"codegraph/internal/graphbuilder"
	"codegraph/internal/paths"
	"codegraph/internal/slogutil"
	"codegraph/internal/sparseindex"
)

// newLogger creates a logger for one CLI invocation. Logs always go to
// stderr to keep stdout clean for command output.
func newLogger() *slog.Logger {
	level := slogutil.LevelFromVerbosity(verbosity, quiet)
	return slogutil.NewLogger(os.Stderr, level)
}

// mustGetRepoRoot resolves the repository root from the positional argument,
// defaulting to the current directory.
func mustGetRepoRoot(arg string) string {
	if arg != "" {
		return arg
	}
	root, err := paths.FindRepoRoot()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return cwd
	}
	return root
}

// buildIndex walks repoRoot, assembles the dependency graph, and builds the
// sparse index over it (spec.md §6's build_graph + build_sparse_index).
func buildIndex(ctx context.Context, repoRoot string, logger *slog.Logger) (*sparseindex.SparseIndex, graphbuilder.BuildStats, string, error) {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err.Error())
		cfg = config.DefaultConfig()
	}

	repoPaths, err := paths.GetRepoPaths(repoRoot, cfg.Index.BaseDir)
	if err != nil {
		return nil, graphbuilder.BuildStats{}, "", fmt.Errorf("resolving index paths: %w", err)
	}
	if _, err := paths.EnsureIndexBaseDir(repoRoot, cfg.Index.BaseDir); err != nil {
		return nil, graphbuilder.BuildStats{}, "", fmt.Errorf("preparing index directory: %w", err)
	}

	buildCfg := graphbuilder.Config{
		FollowSymlinks:      cfg.Build.FollowSymlinks,
		MaxPythonFiles:      cfg.Build.MaxPythonFiles,
		AllowedPythonFiles:  cfg.Build.AllowedPythonFiles,
		RequiredDirectories: cfg.Build.RequiredDirectories,
	}

	graph, stats, err := graphbuilder.BuildGraph(repoRoot, buildCfg)
	if err != nil {
		return nil, graphbuilder.BuildStats{}, "", fmt.Errorf("building graph: %w", err)
	}
	logger.Info("graph built",
		"directories", stats.Directories,
		"files", stats.Files,
		"entities", stats.Entities,
	)

	analyzerCfg := sparseindex.AnalyzerConfig{ExtraStopWords: cfg.Tokenizer.ExtraStopWords}
	idx, err := sparseindex.FromGraph(ctx, graph, repoPaths.IndexBaseDir, analyzerCfg)
	if err != nil {
		return nil, graphbuilder.BuildStats{}, "", fmt.Errorf("building sparse index: %w", err)
	}

	return idx, stats, repoPaths.IndexBaseDir, nil
}
