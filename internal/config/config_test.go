package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad(t *testing.T) {
	t.Run("backend url is required", func(t *testing.T) {
		chdir(t, t.TempDir())
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.url")
	})

	t.Run("defaults fill the rest", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte("backend:\n  url: https://backend.example.com\n  apikey: service-key\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
		chdir(t, dir)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, 8080, cfg.HTTP.Port)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "gallery-images", cfg.Storage.Bucket)
		assert.Equal(t, "google", cfg.Auth.OAuthProvider)
		assert.True(t, cfg.Sweep.Enabled)

		// Public object URLs fall back to the backend host.
		assert.Equal(t, "https://backend.example.com", cfg.Storage.PublicBaseURL)
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte(`environment: production
backend:
  url: https://backend.example.com
  apikey: service-key
  timeout: 3s
http:
  port: 9999
storage:
  bucket: photos
  publicbaseurl: https://cdn.example.com
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))
		chdir(t, dir)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, 9999, cfg.HTTP.Port)
		assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "photos", cfg.Storage.Bucket)
		assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
	})
}
