package interpreter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/OldRepublicDevs/modsync/internal/adapters/archive"
	"github.com/OldRepublicDevs/modsync/internal/adapters/filesystem"
	"github.com/OldRepublicDevs/modsync/internal/adapters/logging"
	"github.com/OldRepublicDevs/modsync/internal/domain/component"
	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
	"github.com/OldRepublicDevs/modsync/internal/testutil"
)

// harness bundles an interpreter with its roots and provider for tests.
type harness struct {
	in         *Interpreter
	provider   ports.Provider
	runner     *ports.MockProcessRunner
	sourceRoot string
	destRoot   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sourceRoot, destRoot, tempRoot := testutil.TempRoots(t)
	runner := ports.NewMockProcessRunner()
	provider := filesystem.NewRealProvider(archive.NewZipCodec())
	paths := pathres.Context{SourceRoot: sourceRoot, DestRoot: destRoot, TempRoot: tempRoot}
	return &harness{
		in:         New(provider, runner, logging.NewNopLogger(), paths),
		provider:   provider,
		runner:     runner,
		sourceRoot: sourceRoot,
		destRoot:   destRoot,
	}
}

func (h *harness) exec(t *testing.T, c *component.Component, index int, components ...*component.Component) ActionExitCode {
	t.Helper()
	if len(components) == 0 {
		components = []*component.Component{c}
	}
	return h.in.ExecuteSingleInstruction(context.Background(), c.Instructions[index], index, components, false)
}

func TestExecute_EmptySourceIsBadInput(t *testing.T) {
	h := newHarness(t)
	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionMove, "<<kotorDirectory>>/Override")).
		Build()

	if got := h.exec(t, c, 0); got != BadInput {
		t.Errorf("exit code = %v, want BadInput", got)
	}
}

func TestExecute_DependencyUnmet(t *testing.T) {
	h := newHarness(t)
	dep := uuid.New()
	instr := testutil.Instr(component.ActionMove, "Override", "<<modDirectory>>/a.txt")
	instr.Dependencies = []uuid.UUID{dep}
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != DependencyUnmet {
		t.Errorf("exit code = %v, want DependencyUnmet", got)
	}
}

func TestExecute_DependencySatisfied(t *testing.T) {
	h := newHarness(t)
	other := testutil.NewComponent("dep").Build()
	testutil.WriteFile(t, h.sourceRoot, "a.txt", "x")

	instr := testutil.Instr(component.ActionMove, "<<kotorDirectory>>/a.txt", "<<modDirectory>>/a.txt")
	instr.Dependencies = []uuid.UUID{other.ID}
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0, c, other); got != Success {
		t.Errorf("exit code = %v, want Success", got)
	}
}

func TestExecute_SkipDepCheck(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "a.txt", "x")

	instr := testutil.Instr(component.ActionMove, "<<kotorDirectory>>/a.txt", "<<modDirectory>>/a.txt")
	instr.Dependencies = []uuid.UUID{uuid.New()}
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	got := h.in.ExecuteSingleInstruction(context.Background(), c.Instructions[0], 0, []*component.Component{c}, true)
	if got != Success {
		t.Errorf("exit code = %v, want Success with skipDepCheck", got)
	}
}

func TestExecute_RestrictionHit(t *testing.T) {
	h := newHarness(t)
	conflicting := testutil.NewComponent("conflicting").Build()

	instr := testutil.Instr(component.ActionMove, "Override", "<<modDirectory>>/a.txt")
	instr.Restrictions = []uuid.UUID{conflicting.ID}
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0, c, conflicting); got != RestrictionHit {
		t.Errorf("exit code = %v, want RestrictionHit", got)
	}
}

func TestExecute_Cancelled(t *testing.T) {
	h := newHarness(t)
	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionMove, "Override", "<<modDirectory>>/a.txt")).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := h.in.ExecuteSingleInstruction(ctx, c.Instructions[0], 0, []*component.Component{c}, false)
	if got != Cancelled {
		t.Errorf("exit code = %v, want Cancelled", got)
	}
}

func TestMove_WildcardIntoDirectory(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "a.tga", "a")
	testutil.WriteFile(t, h.sourceRoot, "b.tga", "b")
	testutil.WriteFile(t, h.sourceRoot, "keep.txt", "k")
	overrideDir := filepath.Join(h.destRoot, "Override")
	if err := os.MkdirAll(overrideDir, 0o755); err != nil {
		t.Fatal(err)
	}

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionMove, "<<kotorDirectory>>/Override", "<<modDirectory>>/*.tga")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(overrideDir, "a.tga")) ||
		!h.provider.FileExists(filepath.Join(overrideDir, "b.tga")) {
		t.Error("moved files missing from destination")
	}
	if h.provider.FileExists(filepath.Join(h.sourceRoot, "a.tga")) {
		t.Error("move must remove the source")
	}
	if !h.provider.FileExists(filepath.Join(h.sourceRoot, "keep.txt")) {
		t.Error("non-matching file must stay")
	}
}

func TestCopy_SingleSourceToFileTarget(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "src.txt", "content")

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/renamed.txt", "<<modDirectory>>/src.txt")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(h.destRoot, "renamed.txt")) {
		t.Error("copy target missing")
	}
	if !h.provider.FileExists(filepath.Join(h.sourceRoot, "src.txt")) {
		t.Error("copy must leave the source in place")
	}
}

func TestCopy_MultiSourceToFileTargetIsBadInput(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "a.tga", "a")
	testutil.WriteFile(t, h.sourceRoot, "b.tga", "b")

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/single.tga", "<<modDirectory>>/*.tga")).
		Build()

	if got := h.exec(t, c, 0); got != BadInput {
		t.Errorf("exit code = %v, want BadInput", got)
	}
}

func TestCopy_WildcardNoMatchesIsFileNotFoundPre(t *testing.T) {
	h := newHarness(t)

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/Override", "<<modDirectory>>/*.tga")).
		Build()

	if got := h.exec(t, c, 0); got != FileNotFoundPre {
		t.Errorf("exit code = %v, want FileNotFoundPre", got)
	}
}

func TestCopy_MultiSegmentWildcardIsFileNotFoundPre(t *testing.T) {
	// Wildcards apply only to the final segment; the directory portion
	// is taken literally, never exists, and the expansion comes up empty.
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, filepath.Join("sub", "file.txt"), "x")

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/Override", "<<modDirectory>>/*/file.txt")).
		Build()

	if got := h.exec(t, c, 0); got != FileNotFoundPre {
		t.Errorf("exit code = %v, want FileNotFoundPre", got)
	}
}

func TestDelete_MultiSegmentWildcardIsSilentWhenOverwriteFalse(t *testing.T) {
	h := newHarness(t)

	instr := testutil.Instr(component.ActionDelete, "", "<<modDirectory>>/*/ghost.txt")
	instr.Overwrite = component.OverwriteFalse
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Errorf("exit code = %v, want Success (silent no-op)", got)
	}
}

func TestCopy_OverwriteFalseOntoExisting(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "src.txt", "new")
	testutil.WriteFile(t, h.destRoot, "dst.txt", "old")

	instr := testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/dst.txt", "<<modDirectory>>/src.txt")
	instr.Overwrite = component.OverwriteFalse
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != AlreadyExists {
		t.Errorf("exit code = %v, want AlreadyExists on the real provider", got)
	}
	data, _ := os.ReadFile(filepath.Join(h.destRoot, "dst.txt"))
	if string(data) != "old" {
		t.Error("blocked copy must not modify the target")
	}
}

func TestRename(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "old.txt", "x")

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionRename, "new.txt", "<<modDirectory>>/old.txt")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(h.sourceRoot, "new.txt")) {
		t.Error("renamed file missing")
	}
}

func TestRename_SeparatorInDestination(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "old.txt", "x")

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionRename, "sub/new.txt", "<<modDirectory>>/old.txt")).
		Build()

	if got := h.exec(t, c, 0); got != BadInput {
		t.Errorf("exit code = %v, want BadInput", got)
	}
}

func TestDelete_MissingSourceSilentWhenOverwriteFalse(t *testing.T) {
	h := newHarness(t)

	instr := testutil.Instr(component.ActionDelete, "", "<<modDirectory>>/ghost.txt")
	instr.Overwrite = component.OverwriteFalse
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Errorf("exit code = %v, want Success (silent no-op)", got)
	}
}

func TestDelete_MissingSourceFailsWhenOverwriteTrue(t *testing.T) {
	h := newHarness(t)

	instr := testutil.Instr(component.ActionDelete, "", "<<modDirectory>>/ghost.txt")
	instr.Overwrite = component.OverwriteTrue
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != FileNotFoundPre {
		t.Errorf("exit code = %v, want FileNotFoundPre", got)
	}
}

func TestDelete_RemovesFiles(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.destRoot, "a.tga", "x")

	instr := testutil.Instr(component.ActionDelete, "", "<<kotorDirectory>>/a.tga")
	instr.Overwrite = component.OverwriteTrue
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if h.provider.FileExists(filepath.Join(h.destRoot, "a.tga")) {
		t.Error("deleted file still present")
	}
}

func TestExtract_DefaultDestinationIsArchiveStem(t *testing.T) {
	h := newHarness(t)
	testutil.WriteZip(t, h.sourceRoot, "mod.zip", map[string]string{"a.txt": "x"})

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionExtract, "", "<<modDirectory>>/mod.zip")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(h.sourceRoot, "mod", "a.txt")) {
		t.Error("extract should land in a directory named after the archive stem")
	}
	if !h.provider.FileExists(filepath.Join(h.sourceRoot, "mod.zip")) {
		t.Error("the archive itself must remain in place")
	}
}

func TestExtract_ExplicitDestination(t *testing.T) {
	h := newHarness(t)
	testutil.WriteZip(t, h.sourceRoot, "mod.zip", map[string]string{"a.txt": "x"})

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionExtract, "<<modDirectory>>/unpacked", "<<modDirectory>>/mod.zip")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(h.sourceRoot, "unpacked", "a.txt")) {
		t.Error("extract destination not honored")
	}
}

func TestExtract_MissingArchive(t *testing.T) {
	h := newHarness(t)

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionExtract, "", "<<modDirectory>>/ghost.zip")).
		Build()

	if got := h.exec(t, c, 0); got != FileNotFoundPre {
		t.Errorf("exit code = %v, want FileNotFoundPre", got)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "mod.rar", "bytes")

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionExtract, "", "<<modDirectory>>/mod.rar")).
		Build()

	if got := h.exec(t, c, 0); got != ArchiveFailure {
		t.Errorf("exit code = %v, want ArchiveFailure", got)
	}
}

func TestDelDuplicate(t *testing.T) {
	h := newHarness(t)
	override := filepath.Join(h.destRoot, "Override")
	testutil.WriteFile(t, override, "both.tga", "tga")
	testutil.WriteFile(t, override, "both.tpc", "tpc")
	testutil.WriteFile(t, override, "only.tpc", "tpc")

	instr := testutil.Instr(component.ActionDelDuplicate, "<<kotorDirectory>>/Override", ".tga", ".tpc")
	instr.Arguments = ".tpc"
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if h.provider.FileExists(filepath.Join(override, "both.tpc")) {
		t.Error("duplicate .tpc should be deleted")
	}
	if !h.provider.FileExists(filepath.Join(override, "both.tga")) {
		t.Error("the kept extension must survive")
	}
	if !h.provider.FileExists(filepath.Join(override, "only.tpc")) {
		t.Error("a .tpc without a .tga sibling must survive")
	}
}

func TestDelDuplicate_ArgumentNotInSourceExtensions(t *testing.T) {
	h := newHarness(t)

	instr := testutil.Instr(component.ActionDelDuplicate, "<<kotorDirectory>>/Override", ".tga", ".tpc")
	instr.Arguments = ".mdl"
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != BadInput {
		t.Errorf("exit code = %v, want BadInput", got)
	}
}

func TestAutoExtract_MissingSourceFromResourceRegistry(t *testing.T) {
	// Seed scenario: Move references missing.dat which is absent; the
	// registry says resource.zip contains it. The engine extracts the
	// archive, then moves the file.
	h := newHarness(t)
	testutil.WriteZip(t, h.sourceRoot, "resource.zip", map[string]string{"missing.dat": "payload"})

	c := testutil.NewComponent("m").
		WithResource("resource.zip", "missing.dat").
		WithInstruction(testutil.Instr(component.ActionMove, "<<kotorDirectory>>/missing.dat", "<<modDirectory>>/missing.dat")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(h.destRoot, "missing.dat")) {
		t.Error("final destination must contain missing.dat")
	}
}

func TestAutoExtract_NotInRegistryStaysMissing(t *testing.T) {
	h := newHarness(t)

	c := testutil.NewComponent("m").
		WithResource("resource.zip", "other.dat").
		WithInstruction(testutil.Instr(component.ActionMove, "<<kotorDirectory>>/missing.dat", "<<modDirectory>>/missing.dat")).
		Build()

	if got := h.exec(t, c, 0); got != FileNotFoundPre {
		t.Errorf("exit code = %v, want FileNotFoundPre", got)
	}
}

func TestChoose_DocumentOrderWinsWithinRestrictionClass(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "first.txt", "1")
	testutil.WriteFile(t, h.sourceRoot, "second.txt", "2")

	optA := &component.Option{
		ID:       uuid.New(),
		Name:     "A",
		Selected: true,
		Instructions: []*component.Instruction{
			testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/winner.txt", "<<modDirectory>>/first.txt"),
		},
	}
	optB := &component.Option{
		ID:       uuid.New(),
		Name:     "B",
		Selected: true,
		Instructions: []*component.Instruction{
			testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/loser.txt", "<<modDirectory>>/second.txt"),
		},
	}
	optA.Restrictions = []uuid.UUID{optB.ID}
	optB.Restrictions = []uuid.UUID{optA.ID}

	c := testutil.NewComponent("m").
		WithOption(optA).
		WithOption(optB).
		WithInstruction(testutil.Instr(component.ActionChoose, "", optA.ID.String(), optB.ID.String())).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if !h.provider.FileExists(filepath.Join(h.destRoot, "winner.txt")) {
		t.Error("first selected option should run")
	}
	if h.provider.FileExists(filepath.Join(h.destRoot, "loser.txt")) {
		t.Error("conflicting later option must be skipped")
	}
}

func TestChoose_UnselectedOptionSkipped(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.sourceRoot, "a.txt", "x")

	opt := &component.Option{
		ID:   uuid.New(),
		Name: "off",
		Instructions: []*component.Instruction{
			testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/a.txt", "<<modDirectory>>/a.txt"),
		},
	}
	c := testutil.NewComponent("m").
		WithOption(opt).
		WithInstruction(testutil.Instr(component.ActionChoose, "", opt.ID.String())).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}
	if h.provider.FileExists(filepath.Join(h.destRoot, "a.txt")) {
		t.Error("unselected option must not execute")
	}
}

func TestChoose_UnknownOptionIsBadInput(t *testing.T) {
	h := newHarness(t)
	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionChoose, "", uuid.New().String())).
		Build()

	if got := h.exec(t, c, 0); got != BadInput {
		t.Errorf("exit code = %v, want BadInput", got)
	}
}

func TestChoose_ConflictRecordsWarningOnVirtualProvider(t *testing.T) {
	sourceRoot, destRoot, tempRoot := testutil.TempRoots(t)
	provider := filesystem.NewVirtualProvider(ports.NewMockArchiveCodec())
	provider.TrackFile(filepath.Join(sourceRoot, "first.txt"))
	provider.TrackFile(filepath.Join(sourceRoot, "second.txt"))

	paths := pathres.Context{SourceRoot: sourceRoot, DestRoot: destRoot, TempRoot: tempRoot}
	in := New(provider, ports.NewNopProcessRunner(), logging.NewNopLogger(), paths)

	optA := &component.Option{
		ID: uuid.New(), Name: "A", Selected: true,
		Instructions: []*component.Instruction{
			testutil.Instr(component.ActionCopy, "<<kotorDirectory>>/a.txt", "<<modDirectory>>/first.txt"),
		},
	}
	optB := &component.Option{
		ID: uuid.New(), Name: "B", Selected: true,
		Restrictions: []uuid.UUID{optA.ID},
	}
	c := testutil.NewComponent("m").
		WithOption(optA).
		WithOption(optB).
		WithInstruction(testutil.Instr(component.ActionChoose, "", optA.ID.String(), optB.ID.String())).
		Build()

	got := in.ExecuteSingleInstruction(context.Background(), c.Instructions[0], 0, []*component.Component{c}, false)
	if got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}

	var warnings int
	for _, issue := range provider.Issues() {
		if issue.Category == string(component.ActionChoose) && issue.Severity == ports.SeverityWarning {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("Choose conflict warnings = %d, want 1", warnings)
	}
}

func TestPatcher_MissingExecutable(t *testing.T) {
	h := newHarness(t)

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionPatcher, "", "<<modDirectory>>/tslpatcher.exe")).
		Build()

	if got := h.exec(t, c, 0); got != FileNotFoundPost {
		t.Errorf("exit code = %v, want FileNotFoundPost", got)
	}
}

func TestPatcher_NonZeroExitIsIOFailure(t *testing.T) {
	h := newHarness(t)
	exe := filepath.Join(h.sourceRoot, "tslpatcher.exe")
	h.runner.AddResult(exe, 3)

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionPatcher, "", "<<modDirectory>>/tslpatcher.exe")).
		Build()

	if got := h.exec(t, c, 0); got != IOFailure {
		t.Errorf("exit code = %v, want IOFailure", got)
	}
}

func TestExecute_RunsInExecutableDirectory(t *testing.T) {
	h := newHarness(t)
	exe := filepath.Join(h.sourceRoot, "tool", "setup.exe")
	h.runner.AddResult(exe, 0)

	instr := testutil.Instr(component.ActionExecute, "", "<<modDirectory>>/tool/setup.exe")
	instr.Arguments = "--silent"
	c := testutil.NewComponent("m").WithInstruction(instr).Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}

	calls := h.runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(calls))
	}
	if calls[0].WorkingDir != filepath.Dir(exe) {
		t.Errorf("working dir = %q, want %q", calls[0].WorkingDir, filepath.Dir(exe))
	}
	if len(calls[0].Args) != 1 || calls[0].Args[0] != "--silent" {
		t.Errorf("args = %v, want [--silent]", calls[0].Args)
	}
}

func TestPatcher_PassesNamespaceArgument(t *testing.T) {
	h := newHarness(t)
	exe := testutil.WriteFile(t, h.sourceRoot, filepath.Join("patch", "tslpatcher.exe"), "bin")
	testutil.WriteFile(t, h.sourceRoot, filepath.Join("patch", "tslpatchdata", "namespaces.ini"),
		"[standard]\nIniName=changes.ini\nName=Standard Install\n")
	h.runner.AddResult(exe, 0)

	c := testutil.NewComponent("m").
		WithInstruction(testutil.Instr(component.ActionPatcher, "", "<<modDirectory>>/patch/tslpatcher.exe")).
		Build()

	if got := h.exec(t, c, 0); got != Success {
		t.Fatalf("exit code = %v, want Success", got)
	}

	calls := h.runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(calls))
	}
	if calls[0].WorkingDir != h.destRoot {
		t.Errorf("patcher working dir = %q, want the game directory", calls[0].WorkingDir)
	}
	found := false
	for _, arg := range calls[0].Args {
		if arg == "changes.ini" {
			found = true
		}
	}
	if !found {
		t.Errorf("args = %v, want the namespace ini name passed through", calls[0].Args)
	}
}

func TestExitCode_StableIntegerMapping(t *testing.T) {
	want := map[ActionExitCode]int{
		Success:          0,
		BadInput:         1,
		DependencyUnmet:  2,
		RestrictionHit:   3,
		FileNotFoundPre:  4,
		FileNotFoundPost: 5,
		AlreadyExists:    6,
		Cancelled:        7,
		IOFailure:        8,
		ArchiveFailure:   9,
		UserAbort:        10,
	}
	for code, value := range want {
		if int(code) != value {
			t.Errorf("%s = %d, want %d", code, int(code), value)
		}
	}
}
