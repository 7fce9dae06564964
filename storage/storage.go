package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dpefoundation/website/config"
)

// Store persists uploaded documents in named buckets.
type Store interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket string, paths ...string) error
	PublicURL(bucket, path string) string
}

// New builds the store selected by STORAGE_DRIVER.
func New(cfg config.AppConfig) (Store, error) {
	switch cfg.StorageDriver {
	case "supabase":
		if cfg.StorageURL == "" || cfg.StorageKey == "" {
			return nil, fmt.Errorf("storage: STORAGE_URL and STORAGE_KEY are required for supabase")
		}
		return NewSupabase(cfg.StorageURL, cfg.StorageKey), nil
	case "local", "":
		return NewLocal(cfg.StorageLocalDir, cfg.StoragePublicBase)
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// ObjectName returns a random object name keeping the lower-cased extension of filename.
func ObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return uuid.NewString() + ext
}
