package component

import "github.com/google/uuid"

// Option is a selectable branch inside a component, used by Choose
// instructions. It carries its own instruction list.
type Option struct {
	ID       uuid.UUID
	Name     string
	Selected bool

	// Restrictions lists sibling options that are mutually exclusive with
	// this one. At most one option of such a class may be honored.
	Restrictions []uuid.UUID

	Instructions []*Instruction
}

// RestrictedAgainst reports whether other is in this option's mutual
// exclusion class.
func (o *Option) RestrictedAgainst(other uuid.UUID) bool {
	for _, id := range o.Restrictions {
		if id == other {
			return true
		}
	}
	return false
}
