package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch for sources other than a local directory
var ErrNotWatchable = errors.New("only directory sources can be watched")

// Watch flushes the cache whenever a file in a directory source changes.
// It returns once the watcher is running; the watcher stops with ctx.
func (s *Service) Watch(ctx context.Context) error {
	dir, ok := s.source.(*DirSource)
	if !ok {
		return ErrNotWatchable
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(dir.Root()); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", dir.Root(), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					s.log.Debug("resource changed", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
					s.Flush()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("watcher error", slog.Any("err", err))
			}
		}
	}()

	s.log.Info("watching resources", slog.String("dir", dir.Root()))
	return nil
}
