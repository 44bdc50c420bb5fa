// Package filesystem provides the two instruction-execution providers:
// RealProvider mutates the OS filesystem, VirtualProvider simulates every
// operation over an in-memory tracked set.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// RealProvider implements ports.Provider against the OS filesystem.
// Archive extraction is delegated to the injected codec.
type RealProvider struct {
	codec         ports.ArchiveCodec
	parallelOps   bool
	parallelLimit int
}

// RealOption configures a RealProvider.
type RealOption func(*RealProvider)

// WithParallelOps enables bounded parallel fan-out for bulk operations.
// A limit below one falls back to the number of sources.
func WithParallelOps(limit int) RealOption {
	return func(p *RealProvider) {
		p.parallelOps = true
		p.parallelLimit = limit
	}
}

// NewRealProvider creates a RealProvider backed by codec.
func NewRealProvider(codec ports.ArchiveCodec, opts ...RealOption) *RealProvider {
	p := &RealProvider{codec: codec}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FileExists reports whether path exists and is a regular file.
func (p *RealProvider) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirExists reports whether path exists and is a directory.
func (p *RealProvider) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnumerateFiles lists the files under dir.
func (p *RealProvider) EnumerateFiles(dir string, recursive bool) ([]string, error) {
	if !p.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, dir)
	}

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read directory %q: %v", ports.ErrIO, dir, err)
		}
		files := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to walk %q: %v", ports.ErrIO, dir, err)
	}
	return files, nil
}

// ReadAllBytes reads the full contents of a file.
func (p *RealProvider) ReadAllBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read %q: %v", ports.ErrIO, path, err)
	}
	return data, nil
}

// WriteAllBytes writes data to path, creating missing parent directories.
func (p *RealProvider) WriteAllBytes(path string, data []byte, overwrite bool) error {
	if !overwrite && p.FileExists(path) {
		return fmt.Errorf("%w: %s", ports.ErrExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %q: %v", ports.ErrIO, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", ports.ErrIO, path, err)
	}
	return nil
}

// Copy copies a file or directory tree from src to dst.
func (p *RealProvider) Copy(src, dst string, overwrite bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, src)
	}
	if info.IsDir() {
		return p.copyTree(src, dst, overwrite)
	}
	return p.copyFile(src, dst, overwrite)
}

func (p *RealProvider) copyFile(src, dst string, overwrite bool) error {
	if !overwrite && p.FileExists(dst) {
		return fmt.Errorf("%w: %s", ports.ErrExists, dst)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: failed to read source %q: %v", ports.ErrIO, src, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: failed to stat source %q: %v", ports.ErrIO, src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %q: %v", ports.ErrIO, dst, err)
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: failed to write %q: %v", ports.ErrIO, dst, err)
	}
	return nil
}

func (p *RealProvider) copyTree(src, dst string, overwrite bool) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: failed to walk %q: %v", ports.ErrIO, src, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("%w: %v", ports.ErrIO, err)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: failed to create directory %q: %v", ports.ErrIO, target, err)
			}
			return nil
		}
		return p.copyFile(path, target, overwrite)
	})
}

// Move moves a file or directory tree. When a plain rename fails (for
// example across volumes) it falls back to copy plus delete.
func (p *RealProvider) Move(src, dst string, overwrite bool) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, src)
	}
	if p.FileExists(dst) || p.DirExists(dst) {
		if !overwrite {
			return fmt.Errorf("%w: %s", ports.ErrExists, dst)
		}
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("%w: failed to replace %q: %v", ports.ErrIO, dst, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %q: %v", ports.ErrIO, dst, err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Cross-volume rename: copy then delete.
	if err := p.Copy(src, dst, true); err != nil {
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("%w: failed to remove %q after copy: %v", ports.ErrIO, src, err)
	}
	return nil
}

// Rename renames src in place. newName must be a bare filename.
func (p *RealProvider) Rename(src, newName string, overwrite bool) error {
	if strings.ContainsAny(newName, `/\`) {
		return fmt.Errorf("%w: rename target %q contains a path separator", ports.ErrBadInput, newName)
	}
	return p.Move(src, filepath.Join(filepath.Dir(src), newName), overwrite)
}

// Delete removes a file or directory tree.
func (p *RealProvider) Delete(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: failed to delete %q: %v", ports.ErrIO, path, err)
	}
	return nil
}

// ExtractArchive extracts archivePath into destDir through the codec.
func (p *RealProvider) ExtractArchive(archivePath, destDir string) ([]string, error) {
	if !p.FileExists(archivePath) {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, archivePath)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create %q: %v", ports.ErrIO, destDir, err)
	}
	paths, err := p.codec.Extract(archivePath, destDir)
	if err != nil {
		if errors.Is(err, ports.ErrBadArchive) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to extract %q: %v", ports.ErrIO, archivePath, err)
	}
	return paths, nil
}

// CopyMany copies several sources. When parallel ops are enabled and the
// targets are all distinct, sources fan out concurrently; the set of side
// effects matches the serial execution either way.
func (p *RealProvider) CopyMany(ops []ports.TransferOp, overwrite bool) error {
	return p.runMany(ops, func(op ports.TransferOp) error {
		return p.Copy(op.Src, op.Dst, overwrite)
	})
}

// MoveMany moves several sources, fanning out like CopyMany.
func (p *RealProvider) MoveMany(ops []ports.TransferOp, overwrite bool) error {
	return p.runMany(ops, func(op ports.TransferOp) error {
		return p.Move(op.Src, op.Dst, overwrite)
	})
}

// DeleteMany deletes several paths, fanning out like CopyMany.
func (p *RealProvider) DeleteMany(paths []string) error {
	ops := make([]ports.TransferOp, len(paths))
	for i, path := range paths {
		ops[i] = ports.TransferOp{Src: path, Dst: path}
	}
	return p.runMany(ops, func(op ports.TransferOp) error {
		return p.Delete(op.Src)
	})
}

func (p *RealProvider) runMany(ops []ports.TransferOp, run func(ports.TransferOp) error) error {
	if !p.parallelOps || len(ops) < 2 || !distinctTargets(ops) {
		for _, op := range ops {
			if err := run(op); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	limit := p.parallelLimit
	if limit < 1 {
		limit = len(ops)
	}
	g.SetLimit(limit)
	for _, op := range ops {
		g.Go(func() error {
			return run(op)
		})
	}
	return g.Wait()
}

// distinctTargets reports whether every effective target is unique,
// compared case-insensitively.
func distinctTargets(ops []ports.TransferOp) bool {
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		key := pathres.Fold(op.Dst)
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// Ensure RealProvider implements the provider interfaces.
var (
	_ ports.Provider     = (*RealProvider)(nil)
	_ ports.BulkProvider = (*RealProvider)(nil)
)
