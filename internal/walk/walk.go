// Package walk performs full scans of a project tree, feeding discovered
// files to the index store and reconciling deletions afterwards.
package walk

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	scerrors "github.com/codescout/codescout/internal/errors"
	"github.com/codescout/codescout/internal/gitignore"
	"github.com/codescout/codescout/internal/store"
)

// gitignoreCacheSize bounds the number of cached per-directory matchers so
// long-running processes do not grow without limit.
const gitignoreCacheSize = 1000

// Walker scans a project tree and indexes every eligible file.
type Walker struct {
	store            *store.Store
	excludeDirs      map[string]struct{}
	respectGitignore bool
	workers          int
	logger           *slog.Logger

	cacheMu        sync.RWMutex
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
}

// Options configures a Walker.
type Options struct {
	// ExcludeDirs are directory names skipped by exact segment match.
	ExcludeDirs []string

	// RespectGitignore makes the walker honor root and nested .gitignore
	// files.
	RespectGitignore bool

	// Workers is the parallel indexing worker count. Non-positive means
	// runtime.NumCPU().
	Workers int

	// Logger overrides slog.Default().
	Logger *slog.Logger
}

// New creates a Walker feeding the given store.
func New(st *store.Store, opts Options) (*Walker, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, scerrors.Wrap(scerrors.ErrCodeInvalidInput, err)
	}

	exclude := make(map[string]struct{}, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = struct{}{}
	}

	return &Walker{
		store:            st,
		excludeDirs:      exclude,
		respectGitignore: opts.RespectGitignore,
		workers:          opts.Workers,
		logger:           opts.Logger,
		gitignoreCache:   cache,
	}, nil
}

// Result summarizes one full scan.
type Result struct {
	// Visited is the number of candidate files handed to the store.
	Visited int

	// Removed is the number of stale entries swept after the walk.
	Removed int

	// Duration is the wall-clock time of the scan including persistence.
	Duration time.Duration
}

// IndexDirectory walks root recursively, indexes every eligible file, sweeps
// entries for files that no longer exist, and persists the index exactly
// once at the end. Per-file failures are logged inside the store and never
// abort the walk; only a missing root or cancellation do.
func (w *Walker) IndexDirectory(ctx context.Context, root string) (Result, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, scerrors.Wrap(scerrors.ErrCodeInvalidInput, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Result{}, scerrors.New(scerrors.ErrCodeNotDirectory, "cannot stat root: "+absRoot, err)
	}
	if !info.IsDir() {
		return Result{}, scerrors.Newf(scerrors.ErrCodeNotDirectory, "not a directory: %s", absRoot)
	}

	paths := make(chan string, w.workers*4)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for path := range paths {
				if err := gctx.Err(); err != nil {
					return err
				}
				w.store.IndexFile(gctx, path)
			}
			return nil
		})
	}

	seen := make(map[string]struct{})
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if cerr := gctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			w.logger.Debug("walk_entry_error", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if _, excluded := w.excludeDirs[d.Name()]; excluded {
				return filepath.SkipDir
			}
			if w.respectGitignore && w.isGitignored(absRoot, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !w.store.Registry().Supported(path) {
			return nil
		}
		if w.respectGitignore && w.isGitignored(absRoot, rel, false) {
			return nil
		}

		seen[path] = struct{}{}
		select {
		case paths <- path:
		case <-gctx.Done():
			return gctx.Err()
		}
		return nil
	})
	close(paths)

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if walkErr != nil {
		return Result{}, walkErr
	}

	removed := w.store.Sweep(seen)

	if err := w.store.Persist(); err != nil {
		return Result{}, err
	}

	res := Result{
		Visited:  len(seen),
		Removed:  removed,
		Duration: time.Since(start),
	}
	w.logger.Info("scan_complete",
		slog.String("root", absRoot),
		slog.Int("visited", res.Visited),
		slog.Int("removed", res.Removed),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// isGitignored checks the root .gitignore and every nested .gitignore on the
// path from root to the entry.
func (w *Walker) isGitignored(absRoot, relPath string, isDir bool) bool {
	if m := w.matcherFor(absRoot, ""); m != nil && m.Match(relPath, isDir) {
		return true
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return false
	}

	base := ""
	current := absRoot
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		current = filepath.Join(current, part)
		base = filepath.ToSlash(filepath.Join(base, part))
		if m := w.matcherFor(current, base); m != nil && m.Match(relPath, isDir) {
			return true
		}
	}
	return false
}

// matcherFor returns the cached matcher for dir's .gitignore, or nil when
// the directory has none.
func (w *Walker) matcherFor(dir, base string) *gitignore.Matcher {
	w.cacheMu.RLock()
	m, ok := w.gitignoreCache.Get(dir)
	w.cacheMu.RUnlock()
	if ok {
		return m
	}

	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	m = gitignore.New()
	if err := m.AddFromFile(path, base); err != nil {
		w.logger.Warn("gitignore_load_failed", slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}

	w.cacheMu.Lock()
	w.gitignoreCache.Add(dir, m)
	w.cacheMu.Unlock()
	return m
}

// InvalidateGitignoreCache drops all cached matchers. Called when a
// .gitignore file changes so the next walk sees fresh patterns.
func (w *Walker) InvalidateGitignoreCache() {
	w.cacheMu.Lock()
	defer w.cacheMu.Unlock()
	w.gitignoreCache.Purge()
}
