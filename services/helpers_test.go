package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.Set(config.AppConfig{SessionSecret: "test-secret", UploadMaxMB: 1})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, config.MigrateMissing(db, models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func freezeTime(t *testing.T, now time.Time) *time.Time {
	t.Helper()
	cur := now
	prev := nowFunc
	nowFunc = func() time.Time { return cur }
	t.Cleanup(func() { nowFunc = prev })
	return &cur
}

type storedObject struct {
	Bucket string
	Path   string
	Body   string
	Type   string
}

// fakeStore records uploads in memory. failOn makes the upload to that bucket fail.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	calls   int
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]storedObject{}}
}

func (f *fakeStore) Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if bucket == f.failOn {
		return errors.New("bucket unavailable")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+path] = storedObject{Bucket: bucket, Path: path, Body: string(b), Type: contentType}
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		delete(f.objects, bucket+"/"+p)
	}
	return nil
}

func (f *fakeStore) PublicURL(bucket, path string) string {
	return "https://files.test/" + bucket + "/" + path
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeStore) has(bucket, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[bucket+"/"+path]
	return ok
}

func doc(name, body string) *UploadFile {
	return &UploadFile{
		Filename: name,
		Size:     int64(len(body)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

// fullApplication returns an application with one PDF per slot of variant.
func fullApplication(t *testing.T, variant, name string) ApplicationInput {
	t.Helper()
	v, err := LookupVariant(variant)
	require.NoError(t, err)
	files := map[string]*UploadFile{}
	for _, slot := range v.Slots {
		files[slot.Field] = doc(slot.Field+".pdf", "%PDF-"+slot.Field)
	}
	return ApplicationInput{FullName: name, Files: files}
}
