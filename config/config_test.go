package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "local", c.StorageDriver)
	assert.Equal(t, 10, c.UploadMaxMB)
	assert.Equal(t, time.Hour, c.SessionTTL)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Zero(t, c.HeartbeatInterval)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("STORAGE_URL", "https://abc.supabase.co/")
	t.Setenv("UPLOAD_MAX_MB", "4")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.org , ,https://b.org")
	t.Setenv("ADMIN_USERNAME", "trustee")

	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)

	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "https://abc.supabase.co", c.StorageURL)
	assert.Equal(t, 4, c.UploadMaxMB)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.True(t, c.CookieSecure)
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, c.AllowedOrigins)
	assert.Equal(t, "trustee", c.AdminUsername)
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"app": {"AppPort": "9000", "Timezone": "America/Chicago", "AllowedOrigins": ["https://dpe.org"]},
		"storage": {"Driver": "supabase", "UploadMaxMB": 25},
		"jobs": {"HeartbeatInterval": "10m"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "America/Chicago", c.Timezone)
	assert.Equal(t, []string{"https://dpe.org"}, c.AllowedOrigins)
	assert.Equal(t, "supabase", c.StorageDriver)
	assert.Equal(t, 25, c.UploadMaxMB)
	assert.Equal(t, 10*time.Minute, c.HeartbeatInterval)
}

func TestLoadJSONConfigMissingFileIsIgnored(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "absent.json"), &c))
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, AppConfig{}.Location())
	assert.Equal(t, time.UTC, AppConfig{Timezone: "Not/AZone"}.Location())
}

func TestSetFillsDefaults(t *testing.T) {
	Set(AppConfig{SessionSecret: "s"})
	got := Get()
	assert.Equal(t, "s", got.SessionSecret)
	assert.Equal(t, "8080", got.AppPort)
}
