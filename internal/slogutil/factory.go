package slogutil

import (
	"io"
	"log/slog"

	"codegraph/internal/config"
	"codegraph/internal/paths"
)

// LoggerFactory creates appropriately configured loggers for codegraph's two
// subsystems (build, query) plus a system-wide logger for repo-independent
// operations. It respects the configuration precedence: CLI flags > global
// config > default.
type LoggerFactory struct {
	repoRoot string
	config   *config.Config
	cliLevel slog.Level // from CLI flags (0 means not set)
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory.
// cliLevel should be 0 if no CLI override was specified.
func NewLoggerFactory(repoRoot string, cfg *config.Config, cliLevel slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		repoRoot: repoRoot,
		config:   cfg,
		cliLevel: cliLevel,
		closers:  make([]io.Closer, 0),
	}
}

// BuildLogger creates a logger for graph-build runs.
// Writes to ~/.codegraph/repos/<hash>/logs/build.log
func (f *LoggerFactory) BuildLogger() (*slog.Logger, error) {
	if f.repoRoot == "" {
		return NewDiscardLogger(), nil
	}

	logPath, err := paths.GetBuildLogPath(f.repoRoot)
	if err != nil {
		return NewDiscardLogger(), nil
	}

	if _, err := paths.EnsureRepoLogsDir(f.repoRoot); err != nil {
		return NewDiscardLogger(), nil
	}

	logger, closer, err := f.createFileLogger(logPath, f.effectiveLevel())
	if err != nil {
		return NewDiscardLogger(), nil
	}

	f.closers = append(f.closers, closer)
	return logger, nil
}

// QueryLogger creates a logger for search runs.
// Writes to ~/.codegraph/repos/<hash>/logs/query.log
func (f *LoggerFactory) QueryLogger() (*slog.Logger, error) {
	if f.repoRoot == "" {
		return NewDiscardLogger(), nil
	}

	logPath, err := paths.GetQueryLogPath(f.repoRoot)
	if err != nil {
		return NewDiscardLogger(), nil
	}

	if _, err := paths.EnsureRepoLogsDir(f.repoRoot); err != nil {
		return NewDiscardLogger(), nil
	}

	logger, closer, err := f.createFileLogger(logPath, f.effectiveLevel())
	if err != nil {
		return NewDiscardLogger(), nil
	}

	f.closers = append(f.closers, closer)
	return logger, nil
}

// SystemLogger creates a logger for global, repo-independent operations.
// Writes to ~/.codegraph/logs/system.log
func (f *LoggerFactory) SystemLogger() (*slog.Logger, error) {
	logPath, err := paths.GetSystemLogPath()
	if err != nil {
		return NewDiscardLogger(), nil
	}

	if _, err := paths.EnsureGlobalLogsDir(); err != nil {
		return NewDiscardLogger(), nil
	}

	logger, closer, err := f.createFileLogger(logPath, f.effectiveLevel())
	if err != nil {
		return NewDiscardLogger(), nil
	}

	f.closers = append(f.closers, closer)
	return logger, nil
}

// createFileLogger creates a file logger with optional size-based rotation.
func (f *LoggerFactory) createFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if f.config.Logging.MaxSize != "" {
		return NewFileLoggerWithRotation(path, level, f.config.Logging.MaxSize, f.config.Logging.MaxBackups)
	}
	return NewFileLogger(path, level)
}

// effectiveLevel returns the effective log level.
// Precedence: CLI flag > config level > default (info).
func (f *LoggerFactory) effectiveLevel() slog.Level {
	if f.cliLevel != 0 {
		return f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
