package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// Validate performs structural checks over a component list without
// executing anything: duplicate identifiers, dangling ordering edges,
// missing required sources, unknown placeholders and over-selected
// option restriction classes.
func Validate(components []*component.Component, paths pathres.Context) []ports.Issue {
	var issues []ports.Issue

	report := func(severity ports.IssueSeverity, category, msg string) {
		issues = append(issues, ports.Issue{Severity: severity, Category: category, Message: msg})
	}

	ids := make(map[uuid.UUID]string, len(components))
	for _, c := range components {
		if existing, dup := ids[c.ID]; dup {
			report(ports.SeverityError, "Structure",
				fmt.Sprintf("components %q and %q share identifier %s", existing, c.Name, c.ID))
			continue
		}
		ids[c.ID] = c.Name
	}

	for _, c := range components {
		for _, edge := range c.InstallBefore {
			if _, ok := ids[edge]; !ok {
				report(ports.SeverityError, "Order",
					fmt.Sprintf("component %q InstallBefore references unknown component %s", c.Name, edge))
			}
		}
		for _, edge := range c.InstallAfter {
			if _, ok := ids[edge]; !ok {
				report(ports.SeverityError, "Order",
					fmt.Sprintf("component %q InstallAfter references unknown component %s", c.Name, edge))
			}
		}

		validateInstructions(c.Name, c.Instructions, paths, report)
		for _, opt := range c.Options {
			validateInstructions(fmt.Sprintf("%s/%s", c.Name, opt.Name), opt.Instructions, paths, report)
		}
		validateOptionRestrictions(c, report)
	}

	return issues
}

func validateInstructions(owner string, instructions []*component.Instruction, paths pathres.Context, report func(ports.IssueSeverity, string, string)) {
	for i, instr := range instructions {
		if instr.Action.RequiresSource() && len(instr.Source) == 0 {
			report(ports.SeverityError, string(instr.Action),
				fmt.Sprintf("%s instruction %d has no source", owner, i))
		}
		for _, src := range instr.Source {
			if err := paths.ValidatePlaceholders(src); err != nil {
				report(ports.SeverityError, string(instr.Action),
					fmt.Sprintf("%s instruction %d: %v", owner, i, err))
			}
		}
		if instr.Destination != "" {
			if err := paths.ValidatePlaceholders(instr.Destination); err != nil {
				report(ports.SeverityError, string(instr.Action),
					fmt.Sprintf("%s instruction %d: %v", owner, i, err))
			}
		}
	}
}

// validateOptionRestrictions checks that at most one option per mutual
// exclusion class is selected.
func validateOptionRestrictions(c *component.Component, report func(ports.IssueSeverity, string, string)) {
	for _, opt := range c.Options {
		if !opt.Selected {
			continue
		}
		for _, other := range c.Options {
			if other == opt || !other.Selected {
				continue
			}
			if opt.RestrictedAgainst(other.ID) || other.RestrictedAgainst(opt.ID) {
				report(ports.SeverityWarning, string(component.ActionChoose),
					fmt.Sprintf("component %q has mutually exclusive options %q and %q both selected", c.Name, opt.Name, other.Name))
			}
		}
	}
}
