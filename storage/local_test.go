package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocal(root, "/static/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Upload(ctx, "applications", "abc.pdf", strings.NewReader("hello"), 5, "application/pdf"))

	b, err := os.ReadFile(filepath.Join(root, "applications", "abc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, "/static/uploads/applications/abc.pdf", s.PublicURL("applications", "abc.pdf"))

	// same name twice is refused
	assert.Error(t, s.Upload(ctx, "applications", "abc.pdf", strings.NewReader("again"), 5, ""))

	require.NoError(t, s.Remove(ctx, "applications", "abc.pdf", "missing.pdf"))
	_, err = os.Stat(filepath.Join(root, "applications", "abc.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocal(root, "/u")
	require.NoError(t, err)

	require.NoError(t, s.Upload(context.Background(), "proofs", "../../escape.pdf", strings.NewReader("x"), 1, ""))
	_, err = os.Stat(filepath.Join(root, "proofs", "escape.pdf"))
	assert.NoError(t, err)

	assert.Error(t, s.Upload(context.Background(), "../etc", "x.pdf", strings.NewReader("x"), 1, ""))
}

func TestObjectName(t *testing.T) {
	name := ObjectName("My Resume.DOCX")
	assert.True(t, strings.HasSuffix(name, ".docx"))
	assert.Len(t, name, 36+len(".docx"))
	assert.NotEqual(t, name, ObjectName("My Resume.DOCX"))
}
