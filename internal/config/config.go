// Package config loads codegraph's on-disk configuration: the knobs
// internal/graphbuilder and internal/sparseindex need from their callers,
// plus logging. It keeps the donor's viper-based loading shape (TOML via
// BurntSushi, env-var overrides, defaults-on-missing-file) narrowed to this
// repo's surface (spec.md §1 Non-goals drop backend/LSP/daemon/webhook/
// telemetry configuration entirely).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// EnvOverride records one environment variable override that was applied.
type EnvOverride struct {
	EnvVar    string
	Path      string
	Value     interface{}
	FromValue string
}

// LoadResult carries the loaded config plus how it was obtained.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	EnvOverrides []EnvOverride
	UsedDefaults bool
}

// Config is codegraph's complete on-disk configuration surface.
type Config struct {
	RepoRoot string `toml:"repo_root" mapstructure:"repo_root"`

	Build     BuildConfig     `toml:"build" mapstructure:"build"`
	Index     IndexConfig     `toml:"index" mapstructure:"index"`
	Tokenizer TokenizerConfig `toml:"tokenizer" mapstructure:"tokenizer"`
	Logging   LoggingConfig   `toml:"logging" mapstructure:"logging"`
}

// BuildConfig controls the graph builder walk (spec.md §4.4.1, §4.4.9).
type BuildConfig struct {
	FollowSymlinks      bool     `toml:"follow_symlinks" mapstructure:"follow_symlinks"`
	MaxPythonFiles      int      `toml:"max_python_files" mapstructure:"max_python_files"`
	AllowedPythonFiles  []string `toml:"allowed_python_files" mapstructure:"allowed_python_files"`
	RequiredDirectories []string `toml:"required_directories" mapstructure:"required_directories"`
}

// IndexConfig controls the sparse index's on-disk location and BM25
// document synthesis (spec.md §4.6).
type IndexConfig struct {
	BaseDir         string `toml:"base_dir" mapstructure:"base_dir"`
	ChunkLines      int    `toml:"chunk_lines" mapstructure:"chunk_lines"`
	ChunkOverlap    int    `toml:"chunk_overlap" mapstructure:"chunk_overlap"`
	MinChunkDensity int    `toml:"min_chunk_density" mapstructure:"min_chunk_density"`
	MaxSnippetBytes int    `toml:"max_snippet_bytes" mapstructure:"max_snippet_bytes"`
}

// TokenizerConfig controls C1 tokenizer behavior (spec.md §4.1).
type TokenizerConfig struct {
	StopWordsFile  string   `toml:"stop_words_file" mapstructure:"stop_words_file"`
	ExtraStopWords []string `toml:"extra_stop_words" mapstructure:"extra_stop_words"`
}

// LoggingConfig controls internal/slogutil output.
type LoggingConfig struct {
	Format     string `toml:"format" mapstructure:"format"` // "human" | "json"
	Level      string `toml:"level" mapstructure:"level"`
	MaxSize    string `toml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
}

// DefaultConfig returns codegraph's default configuration.
func DefaultConfig() *Config {
	return &Config{
		RepoRoot: ".",
		Build: BuildConfig{
			FollowSymlinks:      false,
			MaxPythonFiles:      0,
			AllowedPythonFiles:  nil,
			RequiredDirectories: nil,
		},
		Index: IndexConfig{
			BaseDir:         "",
			ChunkLines:      80,
			ChunkOverlap:    20,
			MinChunkDensity: 120,
			MaxSnippetBytes: 4096,
		},
		Tokenizer: TokenizerConfig{
			StopWordsFile:  "",
			ExtraStopWords: nil,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

const configEnvVar = "CODEGRAPH_CONFIG_PATH"

// LoadConfig loads configuration for repoRoot from <repoRoot>/.codegraph/config.toml.
func LoadConfig(repoRoot string) (*Config, error) {
	result, err := LoadConfigWithDetails(repoRoot)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration and reports how it was obtained.
func LoadConfigWithDetails(repoRoot string) (*LoadResult, error) {
	result := &LoadResult{}

	if configPath := os.Getenv(configEnvVar); configPath != "" {
		cfg, err := loadConfigFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s=%s: %w", configEnvVar, configPath, err)
		}
		result.Config = cfg
		result.ConfigPath = configPath
	} else {
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(repoRoot, ".codegraph"))

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				result.Config = DefaultConfig()
				result.UsedDefaults = true
			} else {
				return nil, err
			}
		} else {
			cfg := DefaultConfig()
			if err := v.Unmarshal(cfg); err != nil {
				return nil, err
			}
			result.Config = cfg
			result.ConfigPath = v.ConfigFileUsed()
		}
	}

	result.EnvOverrides = applyEnvOverrides(result.Config)
	return result, nil
}

func loadConfigFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("invalid TOML in config file: %w", err)
	}
	return cfg, nil
}

type envVarDef struct {
	path    string
	varType string
}

var envVarMappings = map[string]envVarDef{
	"CODEGRAPH_LOG_LEVEL":        {path: "logging.level", varType: "string"},
	"CODEGRAPH_LOG_FORMAT":       {path: "logging.format", varType: "string"},
	"CODEGRAPH_FOLLOW_SYMLINKS":  {path: "build.follow_symlinks", varType: "bool"},
	"CODEGRAPH_MAX_PYTHON_FILES": {path: "build.max_python_files", varType: "int"},
	"CODEGRAPH_INDEX_BASE_DIR":   {path: "index.base_dir", varType: "string"},
}

func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for envVar, def := range envVarMappings {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		var parsedValue interface{}
		var err error
		switch def.varType {
		case "string":
			parsedValue = value
		case "int":
			parsedValue, err = strconv.Atoi(value)
			if err != nil {
				continue
			}
		case "bool":
			parsedValue, err = strconv.ParseBool(value)
			if err != nil {
				continue
			}
		}
		if applyOverride(cfg, def.path, parsedValue) {
			overrides = append(overrides, EnvOverride{EnvVar: envVar, Path: def.path, Value: parsedValue, FromValue: value})
		}
	}
	return overrides
}

func applyOverride(cfg *Config, path string, value interface{}) bool {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return false
	}
	switch parts[0] {
	case "logging":
		switch parts[1] {
		case "level":
			if v, ok := value.(string); ok {
				cfg.Logging.Level = v
				return true
			}
		case "format":
			if v, ok := value.(string); ok {
				cfg.Logging.Format = v
				return true
			}
		}
	case "build":
		switch parts[1] {
		case "follow_symlinks":
			if v, ok := value.(bool); ok {
				cfg.Build.FollowSymlinks = v
				return true
			}
		case "max_python_files":
			if v, ok := value.(int); ok {
				cfg.Build.MaxPythonFiles = v
				return true
			}
		}
	case "index":
		if parts[1] == "base_dir" {
			if v, ok := value.(string); ok {
				cfg.Index.BaseDir = v
				return true
			}
		}
	}
	return false
}

// GetSupportedEnvVars returns every environment variable name this package honors.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings))
	for v := range envVarMappings {
		vars = append(vars, v)
	}
	return vars
}

// Save writes the configuration to <repoRoot>/.codegraph/config.toml.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".codegraph")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "config.toml"))
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// Validate checks structural invariants of the loaded configuration.
func (c *Config) Validate() error {
	if c.Index.ChunkLines <= 0 {
		return &ConfigError{Field: "index.chunk_lines", Message: "must be positive"}
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkLines {
		return &ConfigError{Field: "index.chunk_overlap", Message: "must be non-negative and less than chunk_lines"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
