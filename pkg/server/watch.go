package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	rendertemplate "github.com/goliatone/go-resourceforms/pkg/render/template"
)

// DefaultDebounce batches bursts of editor writes into one reload.
const DefaultDebounce = 100 * time.Millisecond

type WatchOption func(*TemplateWatcher)

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(w *TemplateWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *TemplateWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// TemplateWatcher reloads templates when files under a directory change.
type TemplateWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	reloader rendertemplate.Reloader
	logger   *zap.Logger
	debounce time.Duration
	reloads  atomic.Int64
}

// NewTemplateWatcher watches dir and every directory below it.
func NewTemplateWatcher(dir string, reloader rendertemplate.Reloader, options ...WatchOption) (*TemplateWatcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("server: template dir is required")
	}
	if reloader == nil {
		return nil, errors.New("server: reloader is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: create watcher: %w", err)
	}
	w := &TemplateWatcher{
		watcher:  watcher,
		dir:      dir,
		reloader: reloader,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("server: watch %s: %w", dir, err)
	}
	return w, nil
}

// Reloads reports how many reloads were triggered.
func (w *TemplateWatcher) Reloads() int64 {
	return w.reloads.Load()
}

// Run processes events until ctx is done, then closes the watcher.
func (w *TemplateWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("watching templates", zap.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				w.watchIfDir(event.Name)
			}
			w.logger.Debug("template changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("template watcher error", zap.Error(err))

		case <-timer.C:
			w.reloader.Reload()
			w.reloads.Add(1)
			w.logger.Info("templates reloaded")
		}
	}
}

func (w *TemplateWatcher) watchIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("watch new directory", zap.String("path", path), zap.Error(err))
	}
}
