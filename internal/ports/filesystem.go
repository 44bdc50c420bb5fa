// Package ports defines interfaces for external dependencies.
package ports

import "errors"

// Error kinds returned by Provider operations. Callers match them with
// errors.Is; implementations wrap them with path context.
var (
	// ErrNotFound indicates a source path that does not exist.
	ErrNotFound = errors.New("path not found")
	// ErrExists indicates a target that already exists and overwrite is disabled.
	ErrExists = errors.New("target already exists")
	// ErrIO indicates an operating-system level failure.
	ErrIO = errors.New("io failure")
	// ErrBadInput indicates a malformed argument (e.g. a rename target
	// containing a path separator).
	ErrBadInput = errors.New("bad input")
	// ErrBadArchive indicates an unreadable or unsupported archive.
	ErrBadArchive = errors.New("bad archive")
)

// Provider exposes the filesystem capability set the instruction
// interpreter executes against. The real implementation mutates the OS
// filesystem; the virtual implementation simulates every operation over an
// in-memory tracked set so a dry run can be compared against a real run.
//
// All paths are absolute. Write-producing operations create missing
// destination directories.
type Provider interface {
	// FileExists reports whether path exists and is a regular file.
	FileExists(path string) bool

	// DirExists reports whether path exists and is a directory.
	DirExists(path string) bool

	// EnumerateFiles lists the absolute paths of files under dir.
	// When recursive is false only direct children are returned.
	// Order is unspecified. Returns ErrNotFound if dir is missing.
	EnumerateFiles(dir string, recursive bool) ([]string, error)

	// ReadAllBytes reads the full contents of a file.
	ReadAllBytes(path string) ([]byte, error)

	// WriteAllBytes writes data to path. When the target exists and
	// overwrite is false, the real provider returns ErrExists; the virtual
	// provider records an Overwrite warning, keeps the existing file and
	// returns nil.
	WriteAllBytes(path string, data []byte, overwrite bool) error

	// Copy copies a file or directory tree from src to dst.
	Copy(src, dst string, overwrite bool) error

	// Move moves a file or directory tree from src to dst.
	Move(src, dst string, overwrite bool) error

	// Rename renames src in place. newName must be a bare filename;
	// a separator in newName is ErrBadInput.
	Rename(src, newName string, overwrite bool) error

	// Delete removes a file or directory tree.
	Delete(path string) error

	// ExtractArchive extracts archivePath into destDir and returns the
	// absolute paths of the materialized entries.
	ExtractArchive(archivePath, destDir string) ([]string, error)
}

// TransferOp is a single source-to-target pair of a bulk copy or move.
type TransferOp struct {
	Src string
	Dst string
}

// BulkProvider is an optional capability for providers that can fan out a
// bulk operation across sources. The implementation decides whether the
// targets are distinct enough to run in parallel; the set of side effects
// must equal the serial execution either way.
type BulkProvider interface {
	CopyMany(ops []TransferOp, overwrite bool) error
	MoveMany(ops []TransferOp, overwrite bool) error
	DeleteMany(paths []string) error
}
