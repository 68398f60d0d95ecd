package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/ncdash/internal/blobs"
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "created", "deleted".
type EventCallback func(kind string, blobID string)

// Watch starts an fsnotify watcher on the blob directory and processes
// changes until ctx is cancelled. Blobs removed or renamed away from disk
// drop their catalog rows; cb (if non-nil) is called for each blob created
// or removed.
func Watch(ctx context.Context, db *DB, store *blobs.FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	// Renames fire on the old path only; debounce a full sync afterwards.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(db, store, logger); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			id, valid := blobs.IDFromPath(ev.Name)
			if !valid {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				logger.Debug("watcher: blob created", slog.String("blob", id))
				if cb != nil {
					cb("created", id)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				n, delErr := db.DeleteByBlob(id)
				if delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("blob", id), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: blob removed", slog.String("blob", id), slog.Int64("rows", n))
				if cb != nil {
					cb("deleted", id)
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
