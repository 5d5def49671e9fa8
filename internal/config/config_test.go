package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkvault/chunkvault/pkg/bytesize"
	"github.com/chunkvault/chunkvault/testutil"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, bytesize.Size(512*1024*1024), cfg.MaxObjectSize)
	assert.Equal(t, bytesize.Size(1024*1024), cfg.MaxChunkSize)
}

func TestLoadFullConfig(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.TempFile(t, dir, "config.yaml", `
data_dir: /tmp/chunkvault-data
log_level: debug
max_object_size: 64MB
max_chunk_size: 256KB
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/chunkvault-data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, bytesize.Size(64*1024*1024), cfg.MaxObjectSize)
	assert.Equal(t, bytesize.Size(256*1024), cfg.MaxChunkSize)
}

func TestLoadPartialConfigAppliesDefaults(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.TempFile(t, dir, "config.yaml", `
log_level: warn
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, bytesize.Size(512*1024*1024), cfg.MaxObjectSize)
}

func TestLoadIntegerSizes(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.TempFile(t, dir, "config.yaml", `
max_object_size: 2000000
max_chunk_size: 50000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(2000000), cfg.MaxObjectSize.Bytes())
	assert.Equal(t, int64(50000), cfg.MaxChunkSize.Bytes())
}

func TestLoadChunkLargerThanObject(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.TempFile(t, dir, "config.yaml", `
max_object_size: 1MB
max_chunk_size: 2MB
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_chunk_size")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.TempFile(t, dir, "config.yaml", "data_dir: [not: valid")

	_, err := Load(path)
	require.Error(t, err)
}

func TestCheckpointPath(t *testing.T) {
	cfg := &Config{DataDir: "/srv/vault"}
	assert.Equal(t, filepath.Join("/srv/vault", "checkpoint.cvk"), cfg.CheckpointPath())
}
