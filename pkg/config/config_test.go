package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DL_LIBRARY_PATH", "/srv/library")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/library", cfg.Library.Path)
	assert.Equal(t, "/srv/library/db", cfg.Library.StorePath())
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, "com.github.pvdrz.domain", cfg.DBus.ServerName)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
library:
  path: /data/books
  dbDir: /var/lib/domain
search:
  topK: 10
redis:
  enabled: true
  cacheTTL: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("DL_REDIS_ADDR", "cache:6380")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/books", cfg.Library.Path)
	assert.Equal(t, "/var/lib/domain", cfg.Library.StorePath())
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
}

func TestLoad_RelativePathResolvedAgainstHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DL_LIBRARY_PATH", "library")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "library"), cfg.Library.Path)
}

func TestLoad_RejectsZeroTopK(t *testing.T) {
	t.Setenv("DL_LIBRARY_PATH", "/srv/library")
	t.Setenv("DL_SEARCH_TOP_K", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topK")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
