package component

import "github.com/google/uuid"

// Action identifies the kind of work an instruction performs. The names
// are the public contract shared with serializers and must not change.
type Action string

const (
	// ActionExtract unpacks one or more archives.
	ActionExtract Action = "Extract"
	// ActionMove moves files or directories.
	ActionMove Action = "Move"
	// ActionCopy copies files or directories.
	ActionCopy Action = "Copy"
	// ActionRename renames a single file in place.
	ActionRename Action = "Rename"
	// ActionDelete removes files or directories.
	ActionDelete Action = "Delete"
	// ActionDelDuplicate removes files that duplicate a sibling with a
	// different extension.
	ActionDelDuplicate Action = "DelDuplicate"
	// ActionCleanList deletes files listed in a CSV keyed by mod name.
	ActionCleanList Action = "CleanList"
	// ActionChoose executes the instructions of selected options.
	ActionChoose Action = "Choose"
	// ActionPatcher runs an external patcher tool against the game directory.
	ActionPatcher Action = "Patcher"
	// ActionExecute runs an arbitrary external tool.
	ActionExecute Action = "Execute"
)

// RequiresSource reports whether the action fails with BadInput when its
// source list is empty.
func (a Action) RequiresSource() bool {
	switch a {
	case ActionExtract, ActionMove, ActionCopy, ActionRename, ActionDelete,
		ActionChoose, ActionDelDuplicate, ActionCleanList:
		return true
	case ActionPatcher, ActionExecute:
		return true
	}
	return false
}

// SupportsAutoExtract reports whether a missing source may be satisfied by
// extracting an archive from the owning component's resource registry.
func (a Action) SupportsAutoExtract() bool {
	switch a {
	case ActionMove, ActionCopy, ActionRename, ActionDelete, ActionDelDuplicate:
		return true
	}
	return false
}

// Overwrite is the tri-valued overwrite policy of an instruction.
type Overwrite int

const (
	// OverwriteInherit defers to the component default, which is to
	// overwrite.
	OverwriteInherit Overwrite = iota
	// OverwriteTrue replaces existing targets.
	OverwriteTrue
	// OverwriteFalse leaves existing targets untouched.
	OverwriteFalse
)

// Instruction is a single declarative step of a component or option.
type Instruction struct {
	Action      Action
	Source      []string
	Destination string
	Overwrite   Overwrite
	Arguments   string

	// Dependencies gates execution on these components being selected.
	Dependencies []uuid.UUID
	// Restrictions blocks execution when any of these components is selected.
	Restrictions []uuid.UUID

	// parent is a non-owning back-reference for error reporting, set when
	// the instruction is attached to a component or option.
	parent *Component
}

// Parent returns the component that owns this instruction, directly or
// through an option. Nil until attached.
func (i *Instruction) Parent() *Component {
	return i.parent
}

// OverwriteEnabled resolves the tri-state policy. Inherit resolves to true.
func (i *Instruction) OverwriteEnabled() bool {
	return i.Overwrite != OverwriteFalse
}
