// Package watch re-converts a markdown file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/euforicio/chatmd/internal/converter"
)

// Watcher converts one file on start and again after every change.
type Watcher struct {
	logger  *slog.Logger
	svc     *converter.Service
	opts    converter.Options
	path    string
	dialect string
}

// New returns a Watcher for path. The file's directory is watched rather
// than the file, so saves that replace the file by rename are still seen.
func New(path string, svc *converter.Service, dialectName string, opts converter.Options, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("path must be provided")
	}
	if svc == nil {
		return nil, errors.New("converter service must be provided")
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	return &Watcher{
		logger:  logger.With("component", "watch", "path", abs),
		svc:     svc,
		opts:    opts,
		path:    abs,
		dialect: dialectName,
	}, nil
}

// Run converts the file, passes the result to fn and then repeats on every
// change until ctx is done or fn returns an error. The first conversion's
// error is returned; later conversion errors are logged and skipped.
func (w *Watcher) Run(ctx context.Context, fn func(converter.Document) error) error {
	doc, err := w.convert(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			w.logger.Error("close watcher", slog.Any("err", cerr))
		}
	}()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("fsnotify event", slog.String("op", event.Op.String()))
			w.svc.Invalidate(w.path)

			doc, err := w.convert(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Warn("convert after change", slog.Any("err", err))
				continue
			}
			if err := fn(doc); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.Any("err", err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

func (w *Watcher) convert(ctx context.Context) (converter.Document, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return converter.Document{}, fmt.Errorf("stat document: %w", err)
	}
	content, err := os.ReadFile(w.path)
	if err != nil {
		return converter.Document{}, fmt.Errorf("read document: %w", err)
	}
	return w.svc.Render(ctx, w.path, info.ModTime(), content, w.dialect, w.opts)
}
