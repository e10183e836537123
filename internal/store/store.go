package store

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/codescout/codescout/internal/chunk"
	"github.com/codescout/codescout/internal/config"
	scerrors "github.com/codescout/codescout/internal/errors"
	"github.com/codescout/codescout/internal/lang"
	"github.com/codescout/codescout/internal/token"
)

// lockFileName is the cross-process lock guarding index.json writes.
const lockFileName = "index.lock"

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 512

// Store owns the in-memory index document and its persistence.
//
// All mutation runs under one write lock so a concurrent search never
// observes a half-updated inverted index (stale keywords removed but new
// ones not yet added). Reads take the read side via View.
type Store struct {
	mu  sync.RWMutex
	doc document

	rootDir     string
	indexPath   string
	flk         *flock.Flock
	registry    *lang.Registry
	chunker     *chunk.Chunker
	excludeDirs map[string]struct{}
	maxFileSize int64
	logger      *slog.Logger
}

// Options configures a Store.
type Options struct {
	// Registry supplies language profiles. Nil uses the defaults.
	Registry *lang.Registry

	// ChunkThreshold overrides the chunker's forced-boundary line count.
	ChunkThreshold int

	// ExcludeDirs are directory names ignored by exact segment match.
	ExcludeDirs []string

	// MaxFileSizeBytes skips files larger than this.
	MaxFileSizeBytes int64

	// Logger overrides slog.Default().
	Logger *slog.Logger
}

// New creates a Store rooted at rootDir. Call Initialize before use.
func New(rootDir string, opts Options) *Store {
	if opts.Registry == nil {
		opts.Registry = lang.NewRegistry()
	}
	if opts.MaxFileSizeBytes <= 0 {
		opts.MaxFileSizeBytes = config.DefaultMaxFileSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	exclude := make(map[string]struct{}, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = struct{}{}
	}

	return &Store{
		rootDir:     rootDir,
		indexPath:   config.IndexPath(rootDir),
		flk:         flock.New(filepath.Join(config.DataDir(rootDir), lockFileName)),
		registry:    opts.Registry,
		chunker:     chunk.New(opts.ChunkThreshold),
		excludeDirs: exclude,
		maxFileSize: opts.MaxFileSizeBytes,
		logger:      opts.Logger,
	}
}

// Root returns the index root directory.
func (s *Store) Root() string {
	return s.rootDir
}

// Registry returns the language registry used for extension checks.
func (s *Store) Registry() *lang.Registry {
	return s.registry
}

// Initialize ensures the data directory exists and loads the persisted
// document. Absence or corruption falls back to a fresh empty document and
// is never surfaced as an error; only an unusable storage location is.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(config.DataDir(s.rootDir), 0o755); err != nil {
		return scerrors.StoreError("create data directory", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Files != nil {
		return nil // already initialized
	}

	s.doc = s.load()
	return nil
}

// load reads the persisted document, returning a fresh one on any failure.
func (s *Store) load() document {
	fresh := func() document {
		now := time.Now().UTC()
		return document{
			Version:   IndexVersion,
			RootDir:   s.rootDir,
			Files:     make(map[string]*IndexEntry),
			Keywords:  make(map[string][]string),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	if err := s.flk.RLock(); err == nil {
		defer func() { _ = s.flk.Unlock() }()
	}

	data, err := os.ReadFile(s.indexPath)
	if os.IsNotExist(err) {
		return fresh()
	}
	if err != nil {
		s.logger.Warn("index_load_failed",
			slog.String("path", s.indexPath),
			slog.String("error", err.Error()))
		return fresh()
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("index_corrupt_rebuilding",
			slog.String("path", s.indexPath),
			slog.String("error", scerrors.Wrap(scerrors.ErrCodeStoreCorrupt, err).Error()))
		return fresh()
	}

	if doc.Version > IndexVersion {
		s.logger.Warn("index_version_unsupported",
			slog.Int("found", doc.Version),
			slog.Int("supported", IndexVersion))
		return fresh()
	}
	if doc.Files == nil {
		doc.Files = make(map[string]*IndexEntry)
	}
	if doc.Keywords == nil {
		doc.Keywords = make(map[string][]string)
	}
	doc.RootDir = s.rootDir

	s.logger.Debug("index_loaded",
		slog.String("path", s.indexPath),
		slog.Int("files", len(doc.Files)))
	return doc
}

// IndexFile incrementally (re)indexes one file. Ignored paths,
// unrecognized extensions, oversized and binary files are no-ops, as is an
// unchanged content hash. Read failures are logged and skipped, never
// propagated: a single bad file must not abort a walk.
//
// The stale-keyword removal, entry replacement, and keyword re-addition run
// under one critical section per file.
func (s *Store) IndexFile(ctx context.Context, path string) {
	if err := ctx.Err(); err != nil {
		return
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	if s.isIgnored(absPath) {
		return
	}

	profile, ok := s.registry.Detect(absPath)
	if !ok {
		return
	}

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		if err != nil {
			s.logger.Debug("stat_failed", slog.String("path", absPath), slog.String("error", err.Error()))
		}
		return
	}
	if info.Size() > s.maxFileSize {
		s.logger.Debug("file_too_large", slog.String("path", absPath), slog.Int64("size", info.Size()))
		return
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		s.logger.Warn("read_failed",
			slog.String("path", absPath),
			slog.String("error", scerrors.IOError("read file", err).Error()))
		return
	}
	if isBinary(content) {
		return
	}

	fileHash := token.Fingerprint(content)

	// Fast path: unchanged content is a no-op. Re-checked under the write
	// lock before applying.
	s.mu.RLock()
	existing, exists := s.doc.Files[absPath]
	unchanged := exists && existing.FileHash == fileHash
	s.mu.RUnlock()
	if unchanged {
		return
	}

	relPath, err := filepath.Rel(s.rootDir, absPath)
	if err != nil {
		relPath = absPath
	}

	// Chunking is pure and file-local; keep it outside the lock.
	chunks := s.chunker.Split(absPath, relPath, string(content), profile)

	entry := &IndexEntry{
		FilePath:     absPath,
		RelativePath: relPath,
		Language:     profile.Name,
		Chunks:       chunks,
		LastModified: info.ModTime(),
		FileHash:     fileHash,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.doc.Files[absPath]; ok {
		if prev.FileHash == fileHash {
			return // racing update already installed this content
		}
		s.removeKeywordsLocked(prev)
	}

	s.doc.Files[absPath] = entry
	s.addKeywordsLocked(entry)
	s.doc.UpdatedAt = time.Now().UTC()

	s.logger.Debug("file_indexed",
		slog.String("path", relPath),
		slog.String("language", profile.Name),
		slog.Int("chunks", len(chunks)))
}

// RemoveFile drops a file's entry and its inverted-index contributions.
// Returns false when the path was not tracked.
func (s *Store) RemoveFile(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.doc.Files[absPath]
	if !ok {
		return false
	}

	s.removeKeywordsLocked(entry)
	delete(s.doc.Files, absPath)
	s.doc.UpdatedAt = time.Now().UTC()

	s.logger.Debug("file_removed", slog.String("path", entry.RelativePath))
	return true
}

// Sweep removes entries whose paths are absent from seen (the set of files
// observed during a full walk). Reconciles deletions between scans.
func (s *Store) Sweep(seen map[string]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for path, entry := range s.doc.Files {
		if _, ok := seen[path]; ok {
			continue
		}
		s.removeKeywordsLocked(entry)
		delete(s.doc.Files, path)
		removed++
	}
	if removed > 0 {
		s.doc.UpdatedAt = time.Now().UTC()
		s.logger.Info("swept_deleted_files", slog.Int("removed", removed))
	}
	return removed
}

// Persist serializes the whole document to index.json, overwriting it
// wholesale. The write goes through a temp file and rename, under a
// cross-process file lock.
func (s *Store) Persist() error {
	s.mu.Lock()
	s.doc.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return scerrors.StoreError("marshal index", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.indexPath), 0o755); err != nil {
		return scerrors.StoreError("create data directory", err)
	}

	if err := s.flk.Lock(); err != nil {
		return scerrors.StoreError("acquire index lock", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	tmp := s.indexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return scerrors.StoreError("write index", err)
	}
	if err := os.Rename(tmp, s.indexPath); err != nil {
		_ = os.Remove(tmp)
		return scerrors.StoreError("replace index", err)
	}

	s.logger.Debug("index_persisted", slog.String("path", s.indexPath))
	return nil
}

// Stats returns file, chunk, and distinct-keyword counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := 0
	for _, entry := range s.doc.Files {
		chunks += len(entry.Chunks)
	}
	return Stats{
		Files:    len(s.doc.Files),
		Chunks:   chunks,
		Keywords: len(s.doc.Keywords),
	}
}

// TrackedFiles returns the absolute paths of all indexed files.
func (s *Store) TrackedFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.doc.Files))
	for path := range s.doc.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Dispose drops all in-memory state. The store can be re-Initialized.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = document{}
}

// View runs fn against a read-locked view of the store. Updates cannot
// interleave with fn, so it always sees a fully-consistent index.
func (s *Store) View(fn func(v *View)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&View{doc: &s.doc})
}

// View is a read-only window over the store, valid only inside Store.View.
type View struct {
	doc *document
}

// FilesForKeyword returns the inverted-index file list for a keyword.
func (v *View) FilesForKeyword(keyword string) []string {
	return v.doc.Keywords[keyword]
}

// Entry returns the index entry for an absolute file path.
func (v *View) Entry(path string) (*IndexEntry, bool) {
	e, ok := v.doc.Files[path]
	return e, ok
}

// isIgnored reports whether any path segment under the root equals a
// configured ignore marker. Exact segment comparison: a marker "build"
// skips build/ but never builder/.
func (s *Store) isIgnored(absPath string) bool {
	rel, err := filepath.Rel(s.rootDir, absPath)
	if err != nil || rel == "." {
		return false
	}
	for _, seg := range splitSegments(rel) {
		if _, ok := s.excludeDirs[seg]; ok {
			return true
		}
	}
	return false
}

func splitSegments(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}

// addKeywordsLocked inserts the entry's path into every keyword list its
// chunks contribute, keeping lists sorted and deduplicated.
func (s *Store) addKeywordsLocked(entry *IndexEntry) {
	for _, c := range entry.Chunks {
		for _, kw := range c.Keywords {
			s.doc.Keywords[kw] = insertSorted(s.doc.Keywords[kw], entry.FilePath)
		}
	}
}

// removeKeywordsLocked removes the entry's path from every keyword list its
// chunks contributed. Must run before a rebuild so keywords gone after an
// edit do not retain stale file associations.
func (s *Store) removeKeywordsLocked(entry *IndexEntry) {
	for _, c := range entry.Chunks {
		for _, kw := range c.Keywords {
			list := removeString(s.doc.Keywords[kw], entry.FilePath)
			if len(list) == 0 {
				delete(s.doc.Keywords, kw)
			} else {
				s.doc.Keywords[kw] = list
			}
		}
	}
}

// insertSorted inserts v into a sorted slice, keeping it deduplicated.
func insertSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	if i < len(list) && list[i] == v {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

// removeString removes v from a sorted slice if present.
func removeString(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	if i < len(list) && list[i] == v {
		return append(list[:i], list[i+1:]...)
	}
	return list
}

// isBinary reports whether content looks binary (NUL in the first 512 bytes).
func isBinary(content []byte) bool {
	n := len(content)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(content[:n], 0) >= 0
}
