// Package archive provides the built-in zip implementation of
// ports.ArchiveCodec. The .7z and .rar formats the engine also recognizes
// are served by an external codec; this adapter reports them unsupported.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// ZipCodec reads and extracts .zip archives using the standard library.
type ZipCodec struct{}

// NewZipCodec creates a new ZipCodec.
func NewZipCodec() *ZipCodec {
	return &ZipCodec{}
}

// ListEntries returns the file entries of the archive without extracting.
func (c *ZipCodec) ListEntries(archivePath string) ([]ports.ArchiveEntry, error) {
	reader, err := c.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	entries := make([]ports.ArchiveEntry, 0, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, ports.ArchiveEntry{
			Path: f.Name,
			Size: int64(f.UncompressedSize64),
		})
	}
	return entries, nil
}

// Extract materializes the archive's entries under destDir. Entry paths
// are scoped inside destDir so a crafted archive cannot escape it.
func (c *ZipCodec) Extract(archivePath, destDir string) ([]string, error) {
	reader, err := c.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	paths := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		target, err := securejoin.SecureJoin(destDir, filepath.FromSlash(f.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q escapes destination: %v", ports.ErrBadArchive, f.Name, err)
		}
		if err := extractEntry(f, target); err != nil {
			return nil, err
		}
		paths = append(paths, target)
	}
	return paths, nil
}

func (c *ZipCodec) open(archivePath string) (*zip.ReadCloser, error) {
	ext := strings.ToLower(filepath.Ext(archivePath))
	if ext != ".zip" {
		return nil, fmt.Errorf("%w: unsupported extension %q", ports.ErrBadArchive, ext)
	}
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, archivePath)
		}
		return nil, fmt.Errorf("%w: failed to open %q: %v", ports.ErrBadArchive, archivePath, err)
	}
	return reader, nil
}

func extractEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %q: %v", ports.ErrIO, target, err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to read entry %q: %v", ports.ErrBadArchive, f.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o200)
	if err != nil {
		return fmt.Errorf("%w: failed to create %q: %v", ports.ErrIO, target, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: failed to extract %q: %v", ports.ErrIO, f.Name, err)
	}
	return nil
}

// Ensure ZipCodec implements ArchiveCodec.
var _ ports.ArchiveCodec = (*ZipCodec)(nil)
