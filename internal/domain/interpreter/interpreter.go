package interpreter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// Interpreter dispatches instructions to a filesystem provider and an
// external process runner. One interpreter serves one batch; it holds no
// per-instruction state.
type Interpreter struct {
	provider ports.Provider
	runner   ports.ProcessRunner
	logger   ports.Logger
	paths    pathres.Context
}

// New creates an Interpreter bound to a provider and process runner.
func New(provider ports.Provider, runner ports.ProcessRunner, logger ports.Logger, paths pathres.Context) *Interpreter {
	return &Interpreter{
		provider: provider,
		runner:   runner,
		logger:   logger,
		paths:    paths,
	}
}

// Paths returns the resolver context the interpreter runs with.
func (in *Interpreter) Paths() pathres.Context {
	return in.paths
}

// ExecuteSingleInstruction runs one instruction and reports its exit code.
// Raw errors and panics never cross this boundary; they are logged with
// the instruction index and owning component and mapped to the closest
// exit code.
func (in *Interpreter) ExecuteSingleInstruction(ctx context.Context, instr *component.Instruction, index int, components []*component.Component, skipDepCheck bool) (code ActionExitCode) {
	defer func() {
		if r := recover(); r != nil {
			in.logFailure(ctx, instr, index, IOFailure, fmt.Errorf("panic: %v", r))
			code = IOFailure
		}
	}()

	if ctx.Err() != nil {
		return Cancelled
	}

	selected := component.SelectedIDs(components)

	if !skipDepCheck {
		for _, dep := range instr.Dependencies {
			if !selected[dep] {
				in.logger.Debug(ctx, "dependency unmet",
					ports.F("instruction", index), ports.F("dependency", dep.String()))
				return DependencyUnmet
			}
		}
	}
	for _, restricted := range instr.Restrictions {
		if selected[restricted] {
			in.logger.Debug(ctx, "restriction hit",
				ports.F("instruction", index), ports.F("restriction", restricted.String()))
			return RestrictionHit
		}
	}

	switch instr.Action {
	case component.ActionExtract:
		return in.execExtract(ctx, instr, index)
	case component.ActionMove:
		return in.execTransfer(ctx, instr, index, true)
	case component.ActionCopy:
		return in.execTransfer(ctx, instr, index, false)
	case component.ActionRename:
		return in.execRename(ctx, instr, index)
	case component.ActionDelete:
		return in.execDelete(ctx, instr, index)
	case component.ActionDelDuplicate:
		return in.execDelDuplicate(ctx, instr, index)
	case component.ActionCleanList:
		return in.execCleanList(ctx, instr, index, components)
	case component.ActionChoose:
		return in.execChoose(ctx, instr, index, components, skipDepCheck)
	case component.ActionPatcher:
		return in.execProcess(ctx, instr, index, true)
	case component.ActionExecute:
		return in.execProcess(ctx, instr, index, false)
	default:
		in.logFailure(ctx, instr, index, BadInput, fmt.Errorf("unknown action %q", instr.Action))
		return BadInput
	}
}

// expandSources resolves and wildcard-expands every source of instr.
// A missing non-wildcard source triggers the auto-extract fallback when
// the action supports it and the owning component's resource registry
// knows an archive containing the file.
func (in *Interpreter) expandSources(ctx context.Context, instr *component.Instruction) ([]string, ActionExitCode) {
	if len(instr.Source) == 0 {
		if instr.Action.RequiresSource() {
			return nil, BadInput
		}
		return nil, Success
	}

	enumerate := func(dir string) ([]string, error) {
		return in.provider.EnumerateFiles(dir, false)
	}

	var expanded []string
	for _, raw := range instr.Source {
		resolved, err := in.paths.ResolveSource(raw)
		if err != nil {
			return nil, BadInput
		}

		if !pathres.HasWildcard(resolved) {
			if instr.Action.SupportsAutoExtract() && !in.exists(resolved) {
				in.autoExtract(ctx, instr, resolved)
			}
			expanded = append(expanded, resolved)
			continue
		}

		matches, err := pathres.ExpandWildcards(resolved, enumerate)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue // missing directory expands to nothing
			}
			return nil, BadInput
		}
		expanded = append(expanded, matches...)
	}
	return expanded, Success
}

// autoExtract extracts the registry archive containing the missing file
// into the staging root so the source can re-resolve.
func (in *Interpreter) autoExtract(ctx context.Context, instr *component.Instruction, missing string) {
	parent := instr.Parent()
	if parent == nil || parent.Resources == nil {
		return
	}
	archiveName, ok := parent.Resources.ArchiveFor(filepath.Base(missing))
	if !ok {
		return
	}
	archivePath := filepath.Join(in.paths.SourceRoot, archiveName)
	in.logger.Info(ctx, "auto-extracting registry archive",
		ports.F("archive", archiveName), ports.F("missing", filepath.Base(missing)))
	if _, err := in.provider.ExtractArchive(archivePath, in.paths.SourceRoot); err != nil {
		in.logger.Warn(ctx, "auto-extract failed",
			ports.F("archive", archivePath), ports.F("error", err))
	}
}

func (in *Interpreter) exists(path string) bool {
	return in.provider.FileExists(path) || in.provider.DirExists(path)
}

func (in *Interpreter) execExtract(ctx context.Context, instr *component.Instruction, index int) ActionExitCode {
	sources, code := in.expandSources(ctx, instr)
	if code != Success {
		return code
	}
	if len(sources) == 0 {
		return FileNotFoundPre
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			return Cancelled
		}
		dest := instr.Destination
		var err error
		if dest == "" {
			// Extract next to the archive into a directory named
			// after its stem.
			stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			dest = filepath.Join(filepath.Dir(src), stem)
		} else {
			dest, err = in.paths.ResolveSource(dest)
			if err != nil {
				return BadInput
			}
		}
		if _, err := in.provider.ExtractArchive(src, dest); err != nil {
			return in.mapError(ctx, instr, index, err)
		}
	}
	return Success
}

func (in *Interpreter) execTransfer(ctx context.Context, instr *component.Instruction, index int, move bool) ActionExitCode {
	sources, code := in.expandSources(ctx, instr)
	if code != Success {
		return code
	}
	if len(sources) == 0 {
		return FileNotFoundPre
	}
	if instr.Destination == "" {
		return BadInput
	}

	dest, err := in.paths.ResolveDestination(instr.Destination)
	if err != nil {
		return BadInput
	}

	ops := make([]ports.TransferOp, 0, len(sources))
	if in.provider.DirExists(dest) {
		for _, src := range sources {
			ops = append(ops, ports.TransferOp{Src: src, Dst: filepath.Join(dest, filepath.Base(src))})
		}
	} else {
		if len(sources) > 1 {
			return BadInput
		}
		ops = append(ops, ports.TransferOp{Src: sources[0], Dst: dest})
	}

	overwrite := instr.OverwriteEnabled()

	if bulk, ok := in.provider.(ports.BulkProvider); ok && len(ops) > 1 {
		if move {
			err = bulk.MoveMany(ops, overwrite)
		} else {
			err = bulk.CopyMany(ops, overwrite)
		}
		if err != nil {
			return in.mapError(ctx, instr, index, err)
		}
		return Success
	}

	for _, op := range ops {
		if ctx.Err() != nil {
			return Cancelled
		}
		if move {
			err = in.provider.Move(op.Src, op.Dst, overwrite)
		} else {
			err = in.provider.Copy(op.Src, op.Dst, overwrite)
		}
		if err != nil {
			return in.mapError(ctx, instr, index, err)
		}
	}
	return Success
}

func (in *Interpreter) execRename(ctx context.Context, instr *component.Instruction, index int) ActionExitCode {
	sources, code := in.expandSources(ctx, instr)
	if code != Success {
		return code
	}
	if len(sources) == 0 {
		return FileNotFoundPre
	}
	if len(sources) != 1 {
		return BadInput
	}
	if instr.Destination == "" || strings.ContainsAny(instr.Destination, `/\`) {
		return BadInput
	}

	if err := in.provider.Rename(sources[0], instr.Destination, instr.OverwriteEnabled()); err != nil {
		return in.mapError(ctx, instr, index, err)
	}
	return Success
}

// execDelete removes every expanded source. The overwrite flag keeps its
// documented coupling: a missing source is FileNotFoundPre when overwrite
// is explicitly true and silent otherwise (OverwriteInherit counts as the
// silent side here).
func (in *Interpreter) execDelete(ctx context.Context, instr *component.Instruction, index int) ActionExitCode {
	strict := instr.Overwrite == component.OverwriteTrue

	sources, code := in.expandSources(ctx, instr)
	if code != Success {
		return code
	}
	if len(sources) == 0 {
		if strict {
			return FileNotFoundPre
		}
		return Success
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			return Cancelled
		}
		if !strict && !in.exists(src) {
			continue
		}
		if err := in.provider.Delete(src); err != nil {
			return in.mapError(ctx, instr, index, err)
		}
	}
	return Success
}

// execDelDuplicate removes, within the destination directory, every file
// carrying the extension named in Arguments whose stem also exists with
// the instruction's other source extension.
func (in *Interpreter) execDelDuplicate(ctx context.Context, instr *component.Instruction, index int) ActionExitCode {
	if len(instr.Source) != 2 || instr.Arguments == "" || instr.Destination == "" {
		return BadInput
	}

	extA := normalizeExt(instr.Source[0])
	extB := normalizeExt(instr.Source[1])
	delExt := normalizeExt(instr.Arguments)

	var keepExt string
	switch delExt {
	case extA:
		keepExt = extB
	case extB:
		keepExt = extA
	default:
		return BadInput
	}

	dir, err := in.paths.ResolveDestination(instr.Destination)
	if err != nil {
		return BadInput
	}
	files, err := in.provider.EnumerateFiles(dir, false)
	if err != nil {
		return in.mapError(ctx, instr, index, err)
	}

	kept := make(map[string]bool)
	for _, f := range files {
		if normalizeExt(filepath.Ext(f)) == keepExt {
			stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
			kept[pathres.Fold(stem)] = true
		}
	}

	for _, f := range files {
		if ctx.Err() != nil {
			return Cancelled
		}
		if normalizeExt(filepath.Ext(f)) != delExt {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if !kept[pathres.Fold(stem)] {
			continue
		}
		if err := in.provider.Delete(f); err != nil {
			return in.mapError(ctx, instr, index, err)
		}
	}
	return Success
}

// execChoose executes the instruction lists of the parent component's
// selected options. At most one option per mutual-exclusion class is
// honored; document order wins and later conflicts warn.
func (in *Interpreter) execChoose(ctx context.Context, instr *component.Instruction, index int, components []*component.Component, skipDepCheck bool) ActionExitCode {
	if len(instr.Source) == 0 {
		return BadInput
	}
	parent := instr.Parent()
	if parent == nil {
		return BadInput
	}

	var honored []*component.Option
	for _, raw := range instr.Source {
		if ctx.Err() != nil {
			return Cancelled
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return BadInput
		}
		opt, ok := parent.OptionByID(id)
		if !ok {
			return BadInput
		}
		if !opt.Selected {
			continue
		}
		if conflict := conflictingOption(honored, opt); conflict != nil {
			in.warnOptionConflict(ctx, opt, conflict)
			continue
		}
		honored = append(honored, opt)

		for subIndex, sub := range opt.Instructions {
			if code := in.ExecuteSingleInstruction(ctx, sub, subIndex, components, skipDepCheck); code != Success {
				return code
			}
		}
	}
	return Success
}

// conflictingOption returns the already-honored option that excludes opt,
// if any. Restriction classes are treated symmetrically.
func conflictingOption(honored []*component.Option, opt *component.Option) *component.Option {
	for _, h := range honored {
		if opt.RestrictedAgainst(h.ID) || h.RestrictedAgainst(opt.ID) {
			return h
		}
	}
	return nil
}

func (in *Interpreter) warnOptionConflict(ctx context.Context, skipped, winner *component.Option) {
	in.logger.Warn(ctx, "option skipped: mutually exclusive with an earlier selection",
		ports.F("skipped", skipped.Name), ports.F("winner", winner.Name))
	if recorder, ok := in.provider.(ports.IssueRecorder); ok {
		recorder.RecordIssue(ports.Issue{
			Severity: ports.SeverityWarning,
			Category: string(component.ActionChoose),
			Message:  fmt.Sprintf("option %q skipped: mutually exclusive with %q", skipped.Name, winner.Name),
		})
	}
}

// execProcess runs an external tool for Patcher and Execute instructions.
func (in *Interpreter) execProcess(ctx context.Context, instr *component.Instruction, index int, patcher bool) ActionExitCode {
	if len(instr.Source) == 0 {
		return BadInput
	}
	exe, err := in.paths.ResolveSource(instr.Source[0])
	if err != nil {
		return BadInput
	}

	args := strings.Fields(instr.Arguments)
	var workingDir string
	if patcher {
		workingDir = in.paths.DestRoot
		args = append(args, in.patcherNamespaceArgs(exe)...)
	} else {
		workingDir = filepath.Dir(exe)
	}

	exitCode, err := in.runner.Run(ctx, exe, workingDir, args)
	if err != nil {
		if errors.Is(err, ports.ErrExecutableNotFound) {
			in.logFailure(ctx, instr, index, FileNotFoundPost, err)
			return FileNotFoundPost
		}
		return in.mapError(ctx, instr, index, err)
	}
	if exitCode != 0 {
		in.logFailure(ctx, instr, index, IOFailure, fmt.Errorf("process exited with code %d", exitCode))
		return IOFailure
	}
	return Success
}

// mapError converts a provider error into the closest exit code, logging
// the instruction context.
func (in *Interpreter) mapError(ctx context.Context, instr *component.Instruction, index int, err error) ActionExitCode {
	code := classifyError(err)
	in.logFailure(ctx, instr, index, code, err)
	return code
}

// classifyError maps an error chain to the closest exit code.
func classifyError(err error) ActionExitCode {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return FileNotFoundPre
	case errors.Is(err, ports.ErrExists):
		return AlreadyExists
	case errors.Is(err, ports.ErrBadInput):
		return BadInput
	case errors.Is(err, ports.ErrBadArchive):
		return ArchiveFailure
	case errors.Is(err, context.Canceled):
		return Cancelled
	default:
		return IOFailure
	}
}

// logFailure records a failed instruction as a typed EngineError so every
// failure log line carries the exit code and component context.
func (in *Interpreter) logFailure(ctx context.Context, instr *component.Instruction, index int, code ActionExitCode, err error) {
	e := newEngineError(code, instr, index, err)
	in.logger.Error(ctx, "instruction failed",
		ports.F("action", string(e.Action)),
		ports.F("instruction", e.Instruction),
		ports.F("component", e.Component),
		ports.F("exitCode", e.Code.String()),
		ports.F("error", e.Error()))
}

// normalizeExt lowercases an extension and ensures a leading dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ext
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
