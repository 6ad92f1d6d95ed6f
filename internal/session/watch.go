package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the in-memory view whenever another process rewrites or
// removes the session file, and invokes onChange with the fresh snapshot.
// Best-effort: no ordering or delivery guarantee, the persisted file
// stays authoritative. Lets a long-lived invocation notice a logout or
// login performed by another filebox process.
//
// The parent directory is watched rather than the file itself because the
// store replaces the file by rename, which would silently drop a watch on
// the old inode. Blocks until ctx is canceled.
func (s *Store) Watch(ctx context.Context, onChange func(Session)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session: creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("session: creating directory %s: %w", dir, mkErr)
	}

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("session: watching %s: %w", dir, err)
	}

	base := filepath.Base(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != base {
				continue
			}

			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			s.logger.Debug("session file changed externally", slog.String("op", event.Op.String()))

			if onChange != nil {
				onChange(s.Reload())
			} else {
				s.Reload()
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.logger.Warn("session watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
