// Package ordering linearizes components over their InstallBefore and
// InstallAfter edges.
package ordering

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
)

// Errors for install-order resolution.
var (
	ErrDuplicateComponent = errors.New("duplicate component identifier")
	ErrMissingComponent   = errors.New("ordering edge references unknown component")
	ErrCyclicOrder        = errors.New("install order constraints form a cycle")
)

// ConfirmComponentsInstallOrder produces a linear order of components that
// satisfies every InstallBefore/InstallAfter edge. The first return is
// true iff the input already satisfies the constraints (the output is then
// position-for-position identical to the input). An edge to an identifier
// absent from the input is fatal; no partial order is produced.
//
// Ties between ready components break by original input position, so an
// already-valid list is returned unchanged.
func ConfirmComponentsInstallOrder(components []*component.Component) (bool, []*component.Component, error) {
	index := make(map[uuid.UUID]int, len(components))
	for i, c := range components {
		if _, dup := index[c.ID]; dup {
			return false, nil, fmt.Errorf("%w: %s (%q)", ErrDuplicateComponent, c.ID, c.Name)
		}
		index[c.ID] = i
	}

	// adjacency[i] holds the indexes that must install after component i.
	adjacency := make([][]int, len(components))
	inDegree := make([]int, len(components))

	addEdge := func(from, to int) {
		adjacency[from] = append(adjacency[from], to)
		inDegree[to]++
	}

	for i, c := range components {
		for _, before := range c.InstallBefore {
			j, ok := index[before]
			if !ok {
				return false, nil, fmt.Errorf("%w: %q InstallBefore %s", ErrMissingComponent, c.Name, before)
			}
			addEdge(i, j)
		}
		for _, after := range c.InstallAfter {
			j, ok := index[after]
			if !ok {
				return false, nil, fmt.Errorf("%w: %q InstallAfter %s", ErrMissingComponent, c.Name, after)
			}
			addEdge(j, i)
		}
	}

	// Kahn's algorithm. The ready set is scanned for the smallest
	// original index so the sort is stable with respect to the input.
	ready := make([]bool, len(components))
	for i, deg := range inDegree {
		if deg == 0 {
			ready[i] = true
		}
	}

	ordered := make([]*component.Component, 0, len(components))
	placed := make([]bool, len(components))

	for len(ordered) < len(components) {
		next := -1
		for i := range components {
			if ready[i] && !placed[i] {
				next = i
				break
			}
		}
		if next == -1 {
			return false, nil, fmt.Errorf("%w: %d component(s) unplaceable", ErrCyclicOrder, len(components)-len(ordered))
		}

		placed[next] = true
		ordered = append(ordered, components[next])

		for _, dep := range adjacency[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready[dep] = true
			}
		}
	}

	alreadyOrdered := true
	for i := range components {
		if ordered[i] != components[i] {
			alreadyOrdered = false
			break
		}
	}

	return alreadyOrdered, ordered, nil
}
