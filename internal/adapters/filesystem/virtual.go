package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// vnode is one tracked path. origin points at the on-disk file a node was
// discovered from during initialization so simulated reads can return real
// bytes; it follows the node through moves and copies.
type vnode struct {
	path   string
	dir    bool
	origin string
}

// archiveRecord is the catalog of one tracked archive. The record follows
// the archive through simulated moves, copies and renames so a later
// simulated extract yields the correct entries.
type archiveRecord struct {
	path    string
	entries map[string]ports.ArchiveEntry // folded entry path -> entry
}

func (r *archiveRecord) clone(path string) *archiveRecord {
	entries := make(map[string]ports.ArchiveEntry, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	return &archiveRecord{path: path, entries: entries}
}

// VirtualProvider implements ports.Provider as a pure manipulation of an
// in-memory tracked path set. No OS-level file is modified. Outcomes are
// the tracked set plus the recorded validation issues.
//
// Tracking is case-insensitive: keys are case-folded absolute paths; the
// stored node keeps the original casing.
type VirtualProvider struct {
	codec    ports.ArchiveCodec
	nodes    map[string]*vnode
	archives map[string]*archiveRecord
	contents map[string][]byte
	issues   []ports.Issue
}

// NewVirtualProvider creates an empty VirtualProvider backed by codec.
// The codec is only used to probe archive catalogs during initialization;
// simulated extraction never touches it.
func NewVirtualProvider(codec ports.ArchiveCodec) *VirtualProvider {
	return &VirtualProvider{
		codec:    codec,
		nodes:    make(map[string]*vnode),
		archives: make(map[string]*archiveRecord),
		contents: make(map[string][]byte),
	}
}

// InitializeFromDisk walks the given roots once and populates the tracked
// set. Discovered archives are probed through the codec; a probe failure
// is recorded as a warning, not a fatal error.
func (p *VirtualProvider) InitializeFromDisk(roots ...string) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				p.trackDir(path)
				return nil
			}
			p.trackFile(path, path)
			if ports.IsArchivePath(path) {
				p.probeArchive(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk %q: %w", root, err)
		}
	}
	return nil
}

// TrackFile inserts a file into the tracked set directly. Tests and
// callers without a disk root use this to seed state.
func (p *VirtualProvider) TrackFile(path string) {
	p.trackFile(path, "")
}

// TrackArchive inserts an archive file and its catalog into the tracked
// set directly.
func (p *VirtualProvider) TrackArchive(path string, entries []ports.ArchiveEntry) {
	p.trackFile(path, "")
	record := &archiveRecord{path: path, entries: make(map[string]ports.ArchiveEntry, len(entries))}
	for _, e := range entries {
		record.entries[pathres.Fold(e.Path)] = e
	}
	p.archives[pathres.Fold(path)] = record
}

// TrackedFiles returns the sorted absolute paths of every tracked file.
// This is the authoritative view of what files exist after the simulated
// operations.
func (p *VirtualProvider) TrackedFiles() []string {
	files := make([]string, 0, len(p.nodes))
	for _, n := range p.nodes {
		if !n.dir {
			files = append(files, n.path)
		}
	}
	sort.Strings(files)
	return files
}

// RecordIssue appends a validation issue.
func (p *VirtualProvider) RecordIssue(issue ports.Issue) {
	p.issues = append(p.issues, issue)
}

// Issues returns all recorded issues in recording order.
func (p *VirtualProvider) Issues() []ports.Issue {
	return p.issues
}

// FileExists reports whether path is tracked as a file.
func (p *VirtualProvider) FileExists(path string) bool {
	n, ok := p.nodes[pathres.Fold(path)]
	return ok && !n.dir
}

// DirExists reports whether path is tracked as a directory.
func (p *VirtualProvider) DirExists(path string) bool {
	n, ok := p.nodes[pathres.Fold(path)]
	return ok && n.dir
}

// EnumerateFiles lists the tracked files under dir, sorted.
func (p *VirtualProvider) EnumerateFiles(dir string, recursive bool) ([]string, error) {
	if !p.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, dir)
	}
	prefix := pathres.Fold(dir) + string(filepath.Separator)
	var files []string
	for key, n := range p.nodes {
		if n.dir || !strings.HasPrefix(key, prefix) {
			continue
		}
		if !recursive && strings.ContainsRune(key[len(prefix):], filepath.Separator) {
			continue
		}
		files = append(files, n.path)
	}
	sort.Strings(files)
	return files, nil
}

// ReadAllBytes returns simulated file contents: bytes written during the
// run, or the on-disk bytes the node was initialized from.
func (p *VirtualProvider) ReadAllBytes(path string) ([]byte, error) {
	key := pathres.Fold(path)
	n, ok := p.nodes[key]
	if !ok || n.dir {
		p.RecordIssue(ports.Issue{
			Severity: ports.SeverityError,
			Category: "Read",
			Message:  "source file is not tracked",
			Path:     path,
		})
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	if data, ok := p.contents[key]; ok {
		return data, nil
	}
	if n.origin != "" {
		data, err := os.ReadFile(n.origin)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %q: %v", ports.ErrIO, n.origin, err)
		}
		return data, nil
	}
	return nil, nil
}

// WriteAllBytes simulates writing data to path.
func (p *VirtualProvider) WriteAllBytes(path string, data []byte, overwrite bool) error {
	if p.FileExists(path) && !overwrite {
		p.recordOverwrite(path)
		return nil
	}
	p.trackFile(path, "")
	p.contents[pathres.Fold(path)] = data
	return nil
}

// Copy simulates copying a file or directory tree.
func (p *VirtualProvider) Copy(src, dst string, overwrite bool) error {
	return p.transfer("Copy", src, dst, overwrite, false)
}

// Move simulates moving a file or directory tree.
func (p *VirtualProvider) Move(src, dst string, overwrite bool) error {
	return p.transfer("Move", src, dst, overwrite, true)
}

// Rename simulates renaming src in place. newName must be a bare filename.
func (p *VirtualProvider) Rename(src, newName string, overwrite bool) error {
	if strings.ContainsAny(newName, `/\`) {
		return fmt.Errorf("%w: rename target %q contains a path separator", ports.ErrBadInput, newName)
	}
	return p.transfer("Rename", src, filepath.Join(filepath.Dir(src), newName), overwrite, true)
}

// Delete removes a tracked file or directory tree.
func (p *VirtualProvider) Delete(path string) error {
	key := pathres.Fold(path)
	n, ok := p.nodes[key]
	if !ok {
		p.RecordIssue(ports.Issue{
			Severity: ports.SeverityError,
			Category: "Delete",
			Message:  "source path is not tracked",
			Path:     path,
		})
		return fmt.Errorf("%w: %s", ports.ErrNotFound, path)
	}
	if n.dir {
		for _, childKey := range p.subtreeKeys(key) {
			p.removeNode(childKey)
		}
	}
	p.removeNode(key)
	return nil
}

// ExtractArchive simulates extraction by looking up the archive's catalog
// and synthesizing every entry under destDir.
func (p *VirtualProvider) ExtractArchive(archivePath, destDir string) ([]string, error) {
	key := pathres.Fold(archivePath)
	record, ok := p.archives[key]
	if !ok {
		if _, tracked := p.nodes[key]; tracked {
			p.RecordIssue(ports.Issue{
				Severity: ports.SeverityError,
				Category: "Extract",
				Message:  "tracked file has no archive catalog",
				Path:     archivePath,
			})
			return nil, fmt.Errorf("%w: %s", ports.ErrBadArchive, archivePath)
		}
		p.RecordIssue(ports.Issue{
			Severity: ports.SeverityError,
			Category: "Extract",
			Message:  "archive is not tracked",
			Path:     archivePath,
		})
		return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, archivePath)
	}

	rels := make([]string, 0, len(record.entries))
	for _, e := range record.entries {
		rels = append(rels, e.Path)
	}
	sort.Strings(rels)

	paths := make([]string, 0, len(rels))
	for _, rel := range rels {
		target := filepath.Join(destDir, filepath.FromSlash(rel))
		p.trackFile(target, "")
		paths = append(paths, target)
	}
	return paths, nil
}

// transfer is the shared simulation of Copy, Move and Rename. It re-keys
// archive catalogs so the catalog follows the archive to its new path,
// including every archive inside a transferred directory.
func (p *VirtualProvider) transfer(category, src, dst string, overwrite, remove bool) error {
	srcKey := pathres.Fold(src)
	n, ok := p.nodes[srcKey]
	if !ok {
		p.RecordIssue(ports.Issue{
			Severity: ports.SeverityError,
			Category: category,
			Message:  "source path is not tracked",
			Path:     src,
		})
		return fmt.Errorf("%w: %s", ports.ErrNotFound, src)
	}

	if !n.dir {
		p.transferFile(srcKey, dst, overwrite, remove)
		return nil
	}

	// Directory transfer: every node in the subtree maps to the same
	// relative position under dst.
	p.trackDir(dst)
	for _, childKey := range p.subtreeKeys(srcKey) {
		child := p.nodes[childKey]
		rel, err := filepath.Rel(n.path, child.path)
		if err != nil {
			return fmt.Errorf("%w: %v", ports.ErrIO, err)
		}
		target := filepath.Join(dst, rel)
		if child.dir {
			p.trackDir(target)
			continue
		}
		p.transferFile(childKey, target, overwrite, remove)
	}
	if remove && len(p.fileKeysUnder(srcKey)) == 0 {
		for _, childKey := range p.subtreeKeys(srcKey) {
			p.removeNode(childKey)
		}
		p.removeNode(srcKey)
	}
	return nil
}

// transferFile moves or copies a single tracked file, carrying contents,
// origin and any archive catalog with it. A blocked overwrite leaves the
// tracked set unchanged and records an issue.
func (p *VirtualProvider) transferFile(srcKey, dst string, overwrite, remove bool) {
	src := p.nodes[srcKey]
	dstKey := pathres.Fold(dst)

	if existing, ok := p.nodes[dstKey]; ok && !existing.dir && !overwrite {
		p.recordOverwrite(dst)
		return
	}

	p.trackFile(dst, src.origin)
	if data, ok := p.contents[srcKey]; ok {
		p.contents[dstKey] = data
	}
	if record, ok := p.archives[srcKey]; ok {
		p.archives[dstKey] = record.clone(dst)
	}

	if remove {
		p.removeNode(srcKey)
	}
}

func (p *VirtualProvider) recordOverwrite(path string) {
	p.RecordIssue(ports.Issue{
		Severity: ports.SeverityWarning,
		Category: "Overwrite",
		Message:  "target exists and overwrite is disabled; keeping existing file",
		Path:     path,
	})
}

func (p *VirtualProvider) probeArchive(path string) {
	entries, err := p.codec.ListEntries(path)
	if err != nil {
		p.RecordIssue(ports.Issue{
			Severity: ports.SeverityWarning,
			Category: "Initialize",
			Message:  fmt.Sprintf("failed to read archive catalog: %v", err),
			Path:     path,
		})
		return
	}
	record := &archiveRecord{path: path, entries: make(map[string]ports.ArchiveEntry, len(entries))}
	for _, e := range entries {
		record.entries[pathres.Fold(e.Path)] = e
	}
	p.archives[pathres.Fold(path)] = record
}

func (p *VirtualProvider) trackFile(path, origin string) {
	p.trackDir(filepath.Dir(path))
	p.nodes[pathres.Fold(path)] = &vnode{path: path, origin: origin}
}

func (p *VirtualProvider) trackDir(path string) {
	for {
		key := pathres.Fold(path)
		if _, ok := p.nodes[key]; ok {
			return
		}
		p.nodes[key] = &vnode{path: path, dir: true}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

func (p *VirtualProvider) removeNode(key string) {
	delete(p.nodes, key)
	delete(p.contents, key)
	delete(p.archives, key)
}

// subtreeKeys returns the folded keys strictly below dirKey, sorted so
// parents come before children.
func (p *VirtualProvider) subtreeKeys(dirKey string) []string {
	prefix := dirKey + string(filepath.Separator)
	var keys []string
	for key := range p.nodes {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (p *VirtualProvider) fileKeysUnder(dirKey string) []string {
	var keys []string
	for _, key := range p.subtreeKeys(dirKey) {
		if !p.nodes[key].dir {
			keys = append(keys, key)
		}
	}
	return keys
}

// Ensure VirtualProvider implements the provider interfaces.
var (
	_ ports.Provider      = (*VirtualProvider)(nil)
	_ ports.IssueRecorder = (*VirtualProvider)(nil)
)
