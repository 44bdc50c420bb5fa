// Package testutil provides test helpers and builders shared across
// modsync tests.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempRoots creates temporary source, destination and temp directories
// for a test run. Cleanup is registered with the test.
func TempRoots(t *testing.T) (sourceRoot, destRoot, tempRoot string) {
	t.Helper()
	base := t.TempDir()

	sourceRoot = filepath.Join(base, "mods")
	destRoot = filepath.Join(base, "game")
	tempRoot = filepath.Join(base, "tmp")
	for _, dir := range []string{sourceRoot, destRoot, tempRoot} {
		require.NoError(t, os.MkdirAll(dir, 0o755), "failed to create root %s", dir)
	}
	return sourceRoot, destRoot, tempRoot
}

// WriteFile writes content to dir/name, creating parents as needed, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "failed to write %s", name)
	return path
}

// WriteZip creates a zip archive at dir/name with the given entries
// (relative path to content) and returns the full path.
func WriteZip(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err, "failed to create archive %s", name)
	defer func() { require.NoError(t, f.Close()) }()

	w := zip.NewWriter(f)
	for entry, content := range entries {
		ew, err := w.Create(entry)
		require.NoError(t, err)
		_, err = ew.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

// ListFiles returns the sorted relative paths of all files under root.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}
