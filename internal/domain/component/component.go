// Package component defines the installation data model: components,
// their options, their instructions and the per-component resource
// registry that feeds the auto-extract fallback.
package component

import (
	"strings"

	"github.com/google/uuid"
)

// ResourceRegistry maps an archive basename to the catalog of files that
// archive is known to contain. The value map's key is the contained file's
// name; the bool marks whether the file is required for the install.
type ResourceRegistry map[string]map[string]bool

// ArchiveFor returns the archive basename that contains the named file,
// matched case-insensitively. The second return is false when no archive
// in the registry lists the file.
func (r ResourceRegistry) ArchiveFor(fileName string) (string, bool) {
	want := strings.ToLower(fileName)
	for archive, entries := range r {
		for entry := range entries {
			if strings.ToLower(entry) == want {
				return archive, true
			}
		}
	}
	return "", false
}

// Component is the top-level unit of installation, roughly one mod. It
// carries metadata, ordering constraints, selectable options and an
// ordered instruction list.
type Component struct {
	ID   uuid.UUID
	Name string

	// Author, Description, Directions and Category are opaque to the
	// engine; they ride along for reporting.
	Author      string
	Description string
	Directions  string
	Category    string

	Selected bool

	Instructions []*Instruction
	Options      []*Option

	// InstallBefore and InstallAfter are ordering edges to other
	// components by identifier. An edge to an unknown identifier is a
	// fatal ordering error.
	InstallBefore []uuid.UUID
	InstallAfter  []uuid.UUID

	Resources ResourceRegistry

	state *installTracker
}

// AttachInstructions wires the parent back-references of the component's
// own instructions and every option's instructions. Call once after
// construction.
func (c *Component) AttachInstructions() {
	for _, instr := range c.Instructions {
		instr.parent = c
	}
	for _, opt := range c.Options {
		for _, instr := range opt.Instructions {
			instr.parent = c
		}
	}
}

// OptionByID returns the component's option with the given identifier.
func (c *Component) OptionByID(id uuid.UUID) (*Option, bool) {
	for _, opt := range c.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return nil, false
}

// State returns the component's current install state.
func (c *Component) State() InstallState {
	if c.state == nil {
		return StateNotStarted
	}
	return c.state.Current()
}

// BeginInstall transitions the component to InProgress.
func (c *Component) BeginInstall() error {
	if c.state == nil {
		tracker, err := newInstallTracker()
		if err != nil {
			return err
		}
		c.state = tracker
	}
	c.state.Begin()
	return nil
}

// FinishInstall transitions the component to Completed or Failed.
// Transitions are strictly monotonic; finishing twice is a no-op.
func (c *Component) FinishInstall(succeeded bool) {
	if c.state == nil {
		return
	}
	if succeeded {
		c.state.Complete()
	} else {
		c.state.Fail()
	}
}

// SelectedIDs returns the identifier set of the selected components in
// the list. Dependency and restriction gates check against this set.
func SelectedIDs(components []*Component) map[uuid.UUID]bool {
	selected := make(map[uuid.UUID]bool)
	for _, c := range components {
		if c.Selected {
			selected[c.ID] = true
		}
	}
	return selected
}

// ByID returns the component with the given identifier.
func ByID(components []*Component, id uuid.UUID) (*Component, bool) {
	for _, c := range components {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
