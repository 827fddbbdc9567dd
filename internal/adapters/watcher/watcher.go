// Package watcher watches inbox directories for coordinate files to convert.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultExtensions are the file types picked up when none are configured.
var DefaultExtensions = []string{".csv", ".txt"}

// Handler is called once per settled file.
type Handler func(ctx context.Context, path string) error

// Watcher waits until files in its directories stop changing and hands them to
// the handler. A file is never handled twice at the same time.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	handler    Handler
	logger     *slog.Logger
	paths      []string
	extensions []string
	debounce   time.Duration

	mu       sync.Mutex
	pending  map[string]time.Time
	inFlight map[string]bool
	stopped  bool
	wg       sync.WaitGroup
}

// Config holds watcher configuration.
type Config struct {
	Paths      []string
	Extensions []string
	Debounce   time.Duration
}

// New creates a new file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		normalized = append(normalized, e)
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		handler:    handler,
		logger:     logger,
		paths:      cfg.Paths,
		extensions: normalized,
		debounce:   cfg.Debounce,
		pending:    make(map[string]time.Time),
		inFlight:   make(map[string]bool),
	}, nil
}

// Start watches the configured paths and queues files already present.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			w.logger.Warn("invalid watch path", "path", path, "error", err)
			continue
		}

		if err := w.fsWatcher.Add(absPath); err != nil {
			w.logger.Warn("failed to watch path", "path", absPath, "error", err)
			continue
		}
		w.logger.Info("watching directory", "path", absPath)

		w.scan(absPath)
	}

	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher and waits for running handlers.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) scan(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("failed to scan directory", "path", dir, "error", err)
		return
	}
	for _, e := range entries {
		if e.Type().IsRegular() && w.matches(e.Name()) {
			w.touch(filepath.Join(dir, e.Name()))
		}
	}
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}

	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.mu.Lock()
		delete(w.pending, event.Name)
		w.mu.Unlock()
		return
	}
	if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
		w.touch(event.Name)
	}
}

// touch (re)starts the debounce timer of a file.
func (w *Watcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) tick() time.Duration {
	t := w.debounce / 5
	switch {
	case t <= 0:
		return time.Millisecond
	case t > 100*time.Millisecond:
		return 100 * time.Millisecond
	}
	return t
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	now := time.Now()
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce || w.inFlight[path] {
			continue
		}

		delete(w.pending, path)
		w.inFlight[path] = true

		w.logger.Info("processing file", "path", path)

		w.wg.Add(1)
		go func(path string) {
			defer w.wg.Done()
			defer func() {
				w.mu.Lock()
				delete(w.inFlight, path)
				w.mu.Unlock()
			}()

			if err := w.handler(ctx, path); err != nil {
				w.logger.Error("handler error", "path", path, "error", err)
			}
		}(path)
	}
}

func (w *Watcher) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(name)))
}
