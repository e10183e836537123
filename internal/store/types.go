// Package store owns the persisted codebase index: the file -> entry map
// and the inverted keyword -> file-list map, with incremental per-file
// updates and wholesale JSON persistence.
package store

import (
	"time"

	"github.com/codescout/codescout/internal/chunk"
)

// IndexVersion is the persisted document schema version. Documents with a
// newer version than this are discarded and rebuilt rather than misread.
const IndexVersion = 1

// IndexEntry is the indexed state of one tracked file.
type IndexEntry struct {
	// FilePath is the absolute path of the file.
	FilePath string `json:"filePath"`

	// RelativePath is the path relative to the index root.
	RelativePath string `json:"relativePath"`

	// Language is the profile name derived from the file extension.
	Language string `json:"language"`

	// Chunks is the ordered chunk list covering lines 1..N of the file.
	Chunks []*chunk.Chunk `json:"chunks"`

	// LastModified is the file's mtime at indexing time.
	LastModified time.Time `json:"lastModified"`

	// FileHash is the whole-file content fingerprint the chunks were
	// derived from. Staleness is decided only by recomputing and
	// comparing this value.
	FileHash string `json:"fileHash"`
}

// document is the persisted codebase index.
type document struct {
	Version   int                    `json:"version"`
	RootDir   string                 `json:"rootDir"`
	Files     map[string]*IndexEntry `json:"files"`
	Keywords  map[string][]string    `json:"keywords"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Stats summarizes index contents for diagnostics.
type Stats struct {
	Files    int `json:"files"`
	Chunks   int `json:"chunks"`
	Keywords int `json:"keywords"`
}
