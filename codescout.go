// Package codescout indexes a project's source files into keyword-searchable
// chunks and answers ranked queries against them. The index is owned by an
// explicit handle; callers create one per project root and pass it wherever
// indexing or search is needed.
package codescout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/codescout/codescout/internal/chunk"
	"github.com/codescout/codescout/internal/config"
	scerrors "github.com/codescout/codescout/internal/errors"
	"github.com/codescout/codescout/internal/lang"
	"github.com/codescout/codescout/internal/logging"
	"github.com/codescout/codescout/internal/search"
	"github.com/codescout/codescout/internal/store"
	"github.com/codescout/codescout/internal/walk"
	"github.com/codescout/codescout/internal/watcher"
)

// Chunk is a ranked retrieval unit. See the chunk package for field details.
type Chunk = chunk.Chunk

// SearchResult is one ranked chunk with its score.
type SearchResult = search.Result

// ScanResult summarizes one full directory scan.
type ScanResult = walk.Result

// Stats summarizes index contents.
type Stats = store.Stats

// Options tunes an Index beyond the project's .codescout.yaml.
type Options struct {
	// Config overrides the configuration loaded from the project root.
	Config *config.Config

	// Logger overrides the logger built from the config's log section.
	Logger *slog.Logger

	// Registry overrides the default language profiles.
	Registry *lang.Registry
}

// Index is the handle to one project's code index.
type Index struct {
	root   string
	cfg    config.Config
	logger *slog.Logger

	store  *store.Store
	walker *walk.Walker
	engine *search.Engine

	cleanup func()

	mu     sync.Mutex
	closed bool
}

// New creates an Index for the project at root and loads its persisted
// state. Configuration comes from .codescout.yaml at the root, merged over
// defaults.
func New(root string, opts Options) (*Index, error) {
	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := config.Load(root)
		if err != nil {
			return nil, scerrors.Wrap(scerrors.ErrCodeInvalidInput, err)
		}
		cfg = loaded
	}

	logger := opts.Logger
	cleanup := func() {}
	if logger == nil {
		var err error
		logger, cleanup, err = logging.Setup(logging.Config{
			Level:         cfg.Log.Level,
			FilePath:      cfg.Log.File,
			WriteToStderr: cfg.Log.File == "",
		})
		if err != nil {
			return nil, scerrors.IOError("set up logging", err)
		}
	}

	st := store.New(root, store.Options{
		Registry:         opts.Registry,
		ChunkThreshold:   cfg.Index.ChunkThreshold,
		ExcludeDirs:      cfg.Paths.ExcludeDirs,
		MaxFileSizeBytes: cfg.Index.MaxFileSizeBytes,
		Logger:           logger,
	})
	if err := st.Initialize(); err != nil {
		cleanup()
		return nil, err
	}

	walker, err := walk.New(st, walk.Options{
		ExcludeDirs:      cfg.Paths.ExcludeDirs,
		RespectGitignore: cfg.Paths.RespectGitignore,
		Workers:          cfg.Index.Workers,
		Logger:           logger,
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	return &Index{
		root:    st.Root(),
		cfg:     cfg,
		logger:  logger,
		store:   st,
		walker:  walker,
		engine:  search.New(st, logger),
		cleanup: cleanup,
	}, nil
}

// Root returns the project root the index covers.
func (ix *Index) Root() string {
	return ix.root
}

// IndexDirectory scans the whole project tree, reconciles deletions, and
// persists the result once.
func (ix *Index) IndexDirectory(ctx context.Context) (ScanResult, error) {
	if err := ix.checkOpen(); err != nil {
		return ScanResult{}, err
	}
	return ix.walker.IndexDirectory(ctx, ix.root)
}

// IndexFile incrementally re-indexes one file in memory. Call Persist to
// write the change to disk.
func (ix *Index) IndexFile(ctx context.Context, path string) error {
	if err := ix.checkOpen(); err != nil {
		return err
	}
	ix.store.IndexFile(ctx, path)
	return nil
}

// RemoveFile drops one file from the index in memory.
func (ix *Index) RemoveFile(path string) error {
	if err := ix.checkOpen(); err != nil {
		return err
	}
	ix.store.RemoveFile(path)
	return nil
}

// Search returns the topK highest-scoring chunks for a keyword query.
// topK must be positive.
func (ix *Index) Search(query string, topK int) ([]SearchResult, error) {
	if err := ix.checkOpen(); err != nil {
		return nil, err
	}
	return ix.engine.Search(query, topK)
}

// Stats returns file, chunk, and distinct-keyword counts.
func (ix *Index) Stats() Stats {
	return ix.store.Stats()
}

// Persist writes the full index document to disk, replacing the previous
// one wholesale.
func (ix *Index) Persist() error {
	if err := ix.checkOpen(); err != nil {
		return err
	}
	return ix.store.Persist()
}

// Watch observes the project tree and applies file changes to the index as
// they settle, persisting after each batch. It blocks until ctx is
// cancelled.
func (ix *Index) Watch(ctx context.Context) error {
	if err := ix.checkOpen(); err != nil {
		return err
	}

	w, err := watcher.New(ix.root, watcher.Options{
		Debounce:    ix.cfg.DebounceWindow(),
		ExcludeDirs: ix.cfg.Paths.ExcludeDirs,
		Logger:      ix.logger,
	})
	if err != nil {
		return err
	}
	defer w.Stop()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	for {
		select {
		case err := <-runErr:
			if err == context.Canceled || err == context.DeadlineExceeded {
				return nil
			}
			return err
		case batch, ok := <-w.Batches():
			if !ok {
				return nil
			}
			ix.applyBatch(ctx, batch)
		}
	}
}

// applyBatch maps one debounced event batch onto index operations and
// persists the outcome.
func (ix *Index) applyBatch(ctx context.Context, batch []watcher.FileEvent) {
	changed := false
	for _, ev := range batch {
		if ev.IsDir {
			continue
		}
		switch ev.Operation {
		case watcher.OpCreate, watcher.OpModify:
			ix.store.IndexFile(ctx, ev.Path)
			changed = true
		case watcher.OpDelete, watcher.OpRename:
			if ix.store.RemoveFile(ev.Path) {
				changed = true
			}
		}
	}
	if !changed {
		return
	}
	if err := ix.store.Persist(); err != nil {
		ix.logger.Warn("persist_after_batch_failed", slog.String("error", err.Error()))
	}
}

// Dispose releases the index handle. Further operations fail with a closed
// error. Dispose does not persist; call Persist first if needed.
func (ix *Index) Dispose() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.closed {
		return
	}
	ix.closed = true
	ix.store.Dispose()
	ix.cleanup()
}

func (ix *Index) checkOpen() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return scerrors.New(scerrors.ErrCodeClosed, "index handle has been disposed", nil)
	}
	return nil
}
