package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ConfigVersion, cfg.Version)
	assert.Equal(t, DefaultChunkThreshold, cfg.Index.ChunkThreshold)
	assert.Contains(t, cfg.Paths.ExcludeDirs, "node_modules")
	assert.True(t, cfg.Paths.RespectGitignore)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	content := `
index:
  chunk_threshold: 30
  workers: 2
paths:
  respect_gitignore: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".codescout.yaml"), []byte(content), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Index.ChunkThreshold)
	assert.Equal(t, 2, cfg.Index.Workers)
	assert.False(t, cfg.Paths.RespectGitignore)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched sections keep defaults.
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Index.MaxFileSizeBytes)
	assert.Contains(t, cfg.Paths.ExcludeDirs, ".git")
}

func TestLoad_MalformedFileReturnsError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".codescout.yaml"), []byte("index: [not a map"), 0o644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestConfig_DebounceWindow(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultDebounce, cfg.DebounceWindow())

	cfg.Watch.Debounce = "1s"
	assert.Equal(t, time.Second, cfg.DebounceWindow())

	cfg.Watch.Debounce = "garbage"
	assert.Equal(t, DefaultDebounce, cfg.DebounceWindow())
}

func TestIndexPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/p", ".codescout", "index.json"), IndexPath("/p"))
}
