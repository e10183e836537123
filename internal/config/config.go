// Package config loads CodeScout configuration.
// Defaults are defined here; a project may override them with a
// .codescout.yaml file at its root. Values absent from the file keep their
// defaults, so a partial config is always valid.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigVersion is the current config schema version.
const ConfigVersion = 1

// DataDirName is the directory under the project root holding the persisted
// index and logs.
const DataDirName = ".codescout"

// IndexFileName is the persisted index document inside the data directory.
const IndexFileName = "index.json"

// Config is the complete CodeScout configuration.
type Config struct {
	Version int         `yaml:"version"`
	Paths   PathsConfig `yaml:"paths"`
	Index   IndexConfig `yaml:"index"`
	Watch   WatchConfig `yaml:"watch"`
	Log     LogConfig   `yaml:"log"`
}

// PathsConfig controls which paths the walker visits.
type PathsConfig struct {
	// ExcludeDirs are directory names skipped entirely during walks.
	// Matching is by exact path segment, never substring: a marker "build"
	// skips build/ but not builder/.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// RespectGitignore makes the walker honor .gitignore files (root and
	// nested) in addition to ExcludeDirs.
	RespectGitignore bool `yaml:"respect_gitignore"`
}

// IndexConfig tunes chunking and walking.
type IndexConfig struct {
	// ChunkThreshold is the maximum lines a chunk accumulates before a
	// forced boundary, and the window size for fallback chunking.
	ChunkThreshold int `yaml:"chunk_threshold"`

	// MaxFileSizeBytes skips files larger than this. 0 means the default.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`

	// Workers is the number of parallel indexing workers. 0 means NumCPU.
	Workers int `yaml:"workers"`
}

// WatchConfig tunes the optional file watcher.
type WatchConfig struct {
	// Debounce is the window for coalescing rapid file events, as a
	// duration string (e.g. "200ms").
	Debounce string `yaml:"debounce"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// File is the log file path. Empty logs to stderr only.
	File string `yaml:"file"`
}

// DefaultExcludeDirs are the build/output/dependency/version-control
// directories skipped by default.
var DefaultExcludeDirs = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"vendor",
	"dist",
	"build",
	"out",
	"target",
	"__pycache__",
	".next",
	".venv",
	DataDirName,
}

// DefaultMaxFileSize is the default per-file size cap (2 MiB).
const DefaultMaxFileSize = 2 * 1024 * 1024

// DefaultChunkThreshold is the default forced-boundary line count.
const DefaultChunkThreshold = 50

// DefaultDebounce is the default watcher debounce window.
const DefaultDebounce = 200 * time.Millisecond

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version: ConfigVersion,
		Paths: PathsConfig{
			ExcludeDirs:      append([]string(nil), DefaultExcludeDirs...),
			RespectGitignore: true,
		},
		Index: IndexConfig{
			ChunkThreshold:   DefaultChunkThreshold,
			MaxFileSizeBytes: DefaultMaxFileSize,
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads .codescout.yaml (or .yml) from root, merged over defaults.
// A missing file returns the defaults; a malformed file returns an error.
func Load(root string) (Config, error) {
	cfg := Default()

	path := filepath.Join(root, ".codescout.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		path = filepath.Join(root, ".codescout.yml")
		data, err = os.ReadFile(path)
	}
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	// Unmarshal over the defaults: fields absent from the file keep them.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by an explicit-but-empty config.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = ConfigVersion
	}
	if len(c.Paths.ExcludeDirs) == 0 {
		c.Paths.ExcludeDirs = append([]string(nil), DefaultExcludeDirs...)
	}
	if c.Index.ChunkThreshold <= 0 {
		c.Index.ChunkThreshold = DefaultChunkThreshold
	}
	if c.Index.MaxFileSizeBytes <= 0 {
		c.Index.MaxFileSizeBytes = DefaultMaxFileSize
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = DefaultDebounce.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DebounceWindow parses the configured debounce duration, falling back to
// the default on a malformed value.
func (c *Config) DebounceWindow() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// DataDir returns the CodeScout data directory for a project root.
func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// IndexPath returns the persisted index document path for a project root.
func IndexPath(root string) string {
	return filepath.Join(DataDir(root), IndexFileName)
}
