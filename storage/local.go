package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on disk under Root/{bucket}/{path}. The router serves Root under PublicBase.
type LocalStore struct {
	Root       string
	PublicBase string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, publicBase string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create root: %w", err)
	}
	return &LocalStore{Root: root, PublicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (l *LocalStore) Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType string) error {
	dst, err := l.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("local storage: create bucket dir: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("local storage: create object: %w", err)
	}
	if _, err := io.Copy(out, readerWithContext(ctx, body)); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("local storage: write object: %w", err)
	}
	return out.Close()
}

func (l *LocalStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	var errs []error
	for _, p := range paths {
		dst, err := l.resolve(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("local storage: remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func (l *LocalStore) PublicURL(bucket, path string) string {
	return l.PublicBase + "/" + bucket + "/" + strings.TrimLeft(path, "/")
}

// resolve keeps every object inside Root.
func (l *LocalStore) resolve(bucket, path string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("local storage: invalid bucket %q", bucket)
	}
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("local storage: empty object path")
	}
	return filepath.Join(l.Root, bucket, clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
