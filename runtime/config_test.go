package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBootConfig = `{
  // bootstrap tunables, comments allowed
  "archive_path": "game.arci",
  "filesystem_root": "./content",
  "resource_capacity": 2048,
  "debug": true, // trailing comma below is also fine
}`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadBootConfigParsesCommentsAndTrailingCommas(t *testing.T) {
	path := writeTempConfig(t, sampleBootConfig)

	cfg, err := LoadBootConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "game.arci", cfg.ArchivePath)
	assert.Equal(t, "./content", cfg.FilesystemRoot)
	assert.Equal(t, 2048, cfg.ResourceCapacity)
	assert.True(t, cfg.Debug)
}

func TestLoadBootConfigAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `{"archive_path": "game.arci"}`)

	cfg, err := LoadBootConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.ResourceCapacity)
	assert.Equal(t, 512, cfg.SceneNodeCapacity)
}

func TestLoadBootConfigMissingFile(t *testing.T) {
	_, err := LoadBootConfig(filepath.Join(t.TempDir(), "missing.jsonc"))
	assert.Error(t, err)
}
