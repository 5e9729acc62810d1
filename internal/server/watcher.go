package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/han8909227/avatax-go/internal/cachefile"
)

// SnapshotWatcher calls reload whenever a new ZIP rate snapshot lands in a directory.
type SnapshotWatcher struct {
	watcher *fsnotify.Watcher
	dir     string
	reload  func() error
	log     zerolog.Logger
}

// NewSnapshotWatcher starts watching dir. The watch is active when this returns.
func NewSnapshotWatcher(dir string, reload func() error, logger zerolog.Logger) (*SnapshotWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &SnapshotWatcher{
		watcher: w,
		dir:     dir,
		reload:  reload,
		log:     logger,
	}, nil
}

// Run dispatches events until ctx is done, then closes the watcher.
func (w *SnapshotWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isSnapshotEvent(event) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("snapshot changed")
			if err := w.reload(); err != nil {
				w.log.Warn().Err(err).Str("dir", w.dir).Msg("snapshot reload failed")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("watcher error")
		}
	}
}

// WatchSnapshots watches dir and reloads until ctx is done.
func WatchSnapshots(ctx context.Context, dir string, reload func() error, logger zerolog.Logger) error {
	w, err := NewSnapshotWatcher(dir, reload, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// Temp files from the atomic writer start with a dot and are skipped.
func isSnapshotEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	return !strings.HasPrefix(base, ".") && strings.HasSuffix(base, "_"+cachefile.ZipRateFileName)
}
