package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755))
	}
}

func TestScanFindsWorkingCopies(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"game/.svn",
		"game/Assets/.svn", // nested metadata is not reported again
		"tools/editor/.svn",
		"node_modules/pkg/.svn",
		".hidden/wc/.svn",
		"plain/folder",
	)

	found, err := Scan(context.Background(), []string{root}, DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "game"),
		filepath.Join(root, "tools", "editor"),
	}, found)
}

func TestScanRootIsWorkingCopy(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".svn", "sub/.svn")

	found, err := Scan(context.Background(), []string{root}, DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, []string{root}, found)
}

func TestScanRespectsDepth(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/.svn", "b/c/d/.svn")

	found, err := Scan(context.Background(), []string{root}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a")}, found)

	found, err = Scan(context.Background(), []string{root}, 3)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestScanMultipleRoots(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	mkdirs(t, first, "x/.svn")
	mkdirs(t, second, "y/.svn")

	found, err := Scan(context.Background(), []string{first, second}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(first, "x"), filepath.Join(second, "y")}, found)
}

func TestScanInvalidRoot(t *testing.T) {
	_, err := Scan(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, 0)
	assert.ErrorContains(t, err, "scan root is not a directory")
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "a/.svn")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, []string{root}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
