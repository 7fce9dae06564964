package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/models"
)

type removeRecorder struct {
	removed []string
	fail    bool
}

func (r *removeRecorder) Upload(context.Context, string, string, io.Reader, int64, string) error {
	return nil
}

func (r *removeRecorder) Remove(_ context.Context, bucket string, paths ...string) error {
	if r.fail {
		return errors.New("storage down")
	}
	for _, p := range paths {
		r.removed = append(r.removed, bucket+"/"+p)
	}
	return nil
}

func (r *removeRecorder) PublicURL(bucket, path string) string { return bucket + "/" + path }

func openLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, config.MigrateMissing(db, &models.UploadedFile{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSweepOrphansRemovesOnlyExpiredUnattached(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, now)
	db := openLedgerDB(t)

	rows := []models.UploadedFile{
		{Bucket: "applications", Path: "stale.pdf", ExpireAt: now.Add(-time.Minute)},
		{Bucket: "applications", Path: "fresh.pdf", ExpireAt: now.Add(time.Hour)},
		{Bucket: "attendance", Path: "kept.pdf", ExpireAt: now.Add(-time.Hour), Attached: true},
	}
	require.NoError(t, db.Create(&rows).Error)

	store := &removeRecorder{}
	n, err := SweepOrphans(context.Background(), db, store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"applications/stale.pdf"}, store.removed)

	var left []models.UploadedFile
	require.NoError(t, db.Order("id").Find(&left).Error)
	require.Len(t, left, 2)
	assert.Equal(t, "fresh.pdf", left[0].Path)
	assert.Equal(t, "kept.pdf", left[1].Path)
}

func TestSweepOrphansKeepsRowWhenRemoveFails(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, now)
	db := openLedgerDB(t)
	require.NoError(t, db.Create(&models.UploadedFile{Bucket: "resumes", Path: "a.pdf", ExpireAt: now.Add(-time.Minute)}).Error)

	n, err := SweepOrphans(context.Background(), db, &removeRecorder{fail: true})
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, db.Model(&models.UploadedFile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
