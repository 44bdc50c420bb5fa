package testutil

import (
	"github.com/google/uuid"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
)

// ComponentBuilder builds test components.
type ComponentBuilder struct {
	c *component.Component
}

// NewComponent creates a builder for a selected component with a fresh
// identifier.
func NewComponent(name string) *ComponentBuilder {
	return &ComponentBuilder{
		c: &component.Component{
			ID:       uuid.New(),
			Name:     name,
			Selected: true,
		},
	}
}

// WithID overrides the component identifier.
func (b *ComponentBuilder) WithID(id uuid.UUID) *ComponentBuilder {
	b.c.ID = id
	return b
}

// Unselected clears the selection flag.
func (b *ComponentBuilder) Unselected() *ComponentBuilder {
	b.c.Selected = false
	return b
}

// WithInstruction appends an instruction.
func (b *ComponentBuilder) WithInstruction(instr *component.Instruction) *ComponentBuilder {
	b.c.Instructions = append(b.c.Instructions, instr)
	return b
}

// WithOption appends an option.
func (b *ComponentBuilder) WithOption(opt *component.Option) *ComponentBuilder {
	b.c.Options = append(b.c.Options, opt)
	return b
}

// InstallBefore adds ordering edges.
func (b *ComponentBuilder) InstallBefore(ids ...uuid.UUID) *ComponentBuilder {
	b.c.InstallBefore = append(b.c.InstallBefore, ids...)
	return b
}

// InstallAfter adds ordering edges.
func (b *ComponentBuilder) InstallAfter(ids ...uuid.UUID) *ComponentBuilder {
	b.c.InstallAfter = append(b.c.InstallAfter, ids...)
	return b
}

// WithResource registers an archive and its contained files in the
// component's resource registry.
func (b *ComponentBuilder) WithResource(archive string, files ...string) *ComponentBuilder {
	if b.c.Resources == nil {
		b.c.Resources = make(component.ResourceRegistry)
	}
	entries := make(map[string]bool, len(files))
	for _, f := range files {
		entries[f] = true
	}
	b.c.Resources[archive] = entries
	return b
}

// Build wires instruction back-references and returns the component.
func (b *ComponentBuilder) Build() *component.Component {
	b.c.AttachInstructions()
	return b.c
}

// Instr creates an instruction with sources and destination.
func Instr(action component.Action, dest string, sources ...string) *component.Instruction {
	return &component.Instruction{
		Action:      action,
		Source:      sources,
		Destination: dest,
	}
}
