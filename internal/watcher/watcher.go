package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	scerrors "github.com/codescout/codescout/internal/errors"
)

// Watcher observes a directory tree recursively through fsnotify and emits
// debounced event batches.
type Watcher struct {
	fsw         *fsnotify.Watcher
	debouncer   *Debouncer
	excludeDirs map[string]struct{}
	rootPath    string
	logger      *slog.Logger

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the event coalescing window. Non-positive means 200ms.
	Debounce time.Duration

	// ExcludeDirs are directory names never watched, by exact segment.
	ExcludeDirs []string

	// Logger overrides slog.Default().
	Logger *slog.Logger
}

// New creates a Watcher for root. Call Run to start it.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, scerrors.Wrap(scerrors.ErrCodeInvalidInput, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, scerrors.Wrap(scerrors.ErrCodeFileRead, err)
	}

	exclude := make(map[string]struct{}, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = struct{}{}
	}

	return &Watcher{
		fsw:         fsw,
		debouncer:   NewDebouncer(opts.Debounce),
		excludeDirs: exclude,
		rootPath:    absRoot,
		logger:      opts.Logger,
		stopCh:      make(chan struct{}),
	}, nil
}

// Batches returns the channel of debounced event batches. Closed when the
// watcher stops.
func (w *Watcher) Batches() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Run watches until ctx is cancelled or Stop is called. It blocks, so
// callers run it in a goroutine and consume Batches concurrently.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.rootPath); err != nil {
		return scerrors.Wrap(scerrors.ErrCodeFileRead, err)
	}

	w.logger.Info("watcher_started", slog.String("root", w.rootPath))

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// handle converts one fsnotify event and feeds it to the debouncer. New
// directories are added to the watch set; chmod-only events are dropped.
func (w *Watcher) handle(event fsnotify.Event) {
	rel, err := filepath.Rel(w.rootPath, event.Name)
	if err != nil || rel == "." || w.isExcluded(rel) {
		return
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watch_add_failed",
					slog.String("path", event.Name),
					slog.String("error", err.Error()))
			}
			return
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      event.Name,
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

// addRecursive adds root and every non-excluded directory below it.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.rootPath, path)
		if relErr == nil && rel != "." && w.isExcluded(rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) isExcluded(rel string) bool {
	for rel != "." && rel != "" {
		if _, ok := w.excludeDirs[filepath.Base(rel)]; ok {
			return true
		}
		rel = filepath.Dir(rel)
	}
	return false
}

// Stop stops the watcher and closes the batch channel.
// Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopCh)
	_ = w.fsw.Close()
	w.debouncer.Stop()
}
