package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/storage"
)

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Event, error) {
	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return nil, fmt.Errorf("filestore: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filestore: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("filestore: watcher close", "error", err)
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("filestore: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("filestore: watch %s: %w", dir, err)
		}
	}

	events := make(chan storage.Event, constants.WatchBufferSize)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev storage.Event) {
			select {
			case events <- ev:
			default:
				// Drop when the consumer is not ready; the next write to the
				// document reports it again.
			}
		}
		throttle := storage.NewThrottle(constants.WatchThrottleDelay, send)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("filestore: watcher error", "error", err)
				throttle.Enqueue(storage.Event{Type: storage.EventInvalidated})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					// New collection directories need their own watch.
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								logger.Warn("filestore: watch directory", "dir", dir, "error", err)
							} else {
								watched[dir] = struct{}{}
							}
						}
						throttle.Enqueue(storage.Event{Type: storage.EventInvalidated})
						continue
					}
				}

				ref, ok := s.refForPath(evt.Name)
				if !ok {
					continue
				}
				throttle.Enqueue(storage.Event{Type: storage.EventDocumentChanged, Ref: ref})
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
