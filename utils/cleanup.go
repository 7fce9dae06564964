package utils

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/storage"
)

// StartOrphanSweeper periodically removes uploads that never got attached to a submission.
// It stops when ctx is cancelled.
func StartOrphanSweeper(ctx context.Context, db *gorm.DB, store storage.Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := SweepOrphans(ctx, db, store); err != nil {
					Sugar.Warnf("orphan sweep failed: %v", err)
				} else if n > 0 {
					Sugar.Infof("orphan sweep removed %d objects", n)
				}
			}
		}
	}()
}

// SweepOrphans removes one batch of expired, unattached ledger rows and their objects.
func SweepOrphans(ctx context.Context, db *gorm.DB, store storage.Store) (int, error) {
	var items []models.UploadedFile
	if err := db.WithContext(ctx).
		Where("attached = ? AND expire_at <= ?", false, nowFunc()).
		Order("id").Limit(100).Find(&items).Error; err != nil {
		return 0, err
	}

	removed := 0
	for _, it := range items {
		if err := store.Remove(ctx, it.Bucket, it.Path); err != nil {
			// keep the row so the next round retries
			Sugar.Warnf("orphan remove failed bucket=%s path=%s err=%v", it.Bucket, it.Path, err)
			continue
		}
		if err := db.WithContext(ctx).Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
			Sugar.Warnf("orphan ledger delete failed id=%d err=%v", it.ID, err)
			continue
		}
		removed++
		OrphansRemoved.Inc()
	}
	return removed, nil
}
