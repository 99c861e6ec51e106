package install

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvisionDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, ProvisionDirs(root, discardLogger()))

	for _, dir := range provisionDirs {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err, "expected %s to exist", dir)
		assert.True(t, info.IsDir())
	}
}

func TestProvisionDirsIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, ProvisionDirs(root, discardLogger()))
	require.NoError(t, ProvisionDirs(root, discardLogger()))
}

func TestProvisionDirsLeavesNoMarkers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, ProvisionDirs(root, discardLogger()))

	for _, dir := range provisionDirs {
		entries, err := os.ReadDir(filepath.Join(root, dir))
		require.NoError(t, err)
		for _, e := range entries {
			assert.True(t, e.IsDir(), "unexpected leftover file %s in %s", e.Name(), dir)
		}
	}
}

func TestProvisionDirsCreateFailure(t *testing.T) {
	root := t.TempDir()
	// A regular file where a directory belongs makes MkdirAll fail.
	require.NoError(t, os.WriteFile(filepath.Join(root, "backups"), []byte("x"), 0644))

	err := ProvisionDirs(root, discardLogger())
	require.Error(t, err)

	var fsErr *FSError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, FSOpCreate, fsErr.Op)
	assert.Equal(t, "backups", fsErr.Dir)
	assert.Contains(t, fsErr.Message(), "/backups")
}

func TestEnsureAccessFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureAccessFile(root))

	data, err := os.ReadFile(filepath.Join(root, accessFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "database\\.conf")
}

func TestEnsureAccessFileKeepsExisting(t *testing.T) {
	root := t.TempDir()
	custom := []byte("# operator-managed rules\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, accessFileName), custom, 0644))

	require.NoError(t, EnsureAccessFile(root))

	data, err := os.ReadFile(filepath.Join(root, accessFileName))
	require.NoError(t, err)
	assert.Equal(t, custom, data)
}
