package catalog

import (
	"log/slog"

	"github.com/starford/ncdash/internal/blobs"
)

// Sync brings the catalog in line with the blob store: rows whose blob no
// longer exists on disk are removed. Blobs without rows are left alone; they
// are harmless and may be referenced again by content.
func Sync(db *DB, store blobs.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}
	referenced, err := db.AllBlobIDs()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.ID] = struct{}{}
	}

	for id := range referenced {
		if _, ok := disk[id]; ok {
			continue
		}
		n, err := db.DeleteByBlob(id)
		if err != nil {
			logger.Warn("sync: delete failed", slog.String("blob", id), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("blob", id), slog.Int64("rows", n))
	}
	return nil
}
