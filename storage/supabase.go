package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseStore talks to the Supabase Storage REST API.
type SupabaseStore struct {
	BaseURL string
	Key     string
	HTTP    *http.Client
}

// NewSupabase creates a client for the project at baseURL authenticated with a service key.
func NewSupabase(baseURL, key string) *SupabaseStore {
	return &SupabaseStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload writes body to bucket/path. Existing objects are not overwritten.
func (s *SupabaseStore) Upload(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(bucket, path), body)
	if err != nil {
		return fmt.Errorf("supabase: create request failed: %w", err)
	}
	if size > 0 {
		req.ContentLength = size
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	s.authorize(req)

	return s.do(req, "upload")
}

// Remove deletes the given paths from bucket.
func (s *SupabaseStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	payload, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return fmt.Errorf("supabase: encode remove payload failed: %w", err)
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s", s.BaseURL, url.PathEscape(bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("supabase: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	return s.do(req, "remove")
}

// PublicURL returns the public download URL of an object.
func (s *SupabaseStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.BaseURL, url.PathEscape(bucket), escapePath(path))
}

func (s *SupabaseStore) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.BaseURL, url.PathEscape(bucket), escapePath(path))
}

func (s *SupabaseStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.Key)
	req.Header.Set("apikey", s.Key)
}

func (s *SupabaseStore) do(req *http.Request, op string) error {
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("supabase: %s failed (%d): %s", op, resp.StatusCode, string(body))
	}
	return nil
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
