package main

import (
	"log/slog"

	"codegraph/internal/slogutil"
	"codegraph/internal/version"

	"github.com/spf13/cobra"
)

var (
	verbosity int
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "codegraph - static code intelligence for Python repositories",
	Long: `codegraph builds a typed dependency graph over a Python repository
(directories, files, classes, functions, and their contain/import/invoke/
inherit relationships) and a two-tier sparse search index over it: an
exact/prefix name dictionary fronting a BM25 full-text index.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("codegraph version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase output verbosity (-v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all non-error output")
}

func cliLogLevel() slog.Level {
	return slogutil.LevelFromVerbosity(verbosity, quiet)
}
