package main

import (
	"github.com/spf13/cobra"

	"github.com/OldRepublicDevs/modsync/internal/domain/engine"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

var validateCmd = &cobra.Command{
	Use:   "validate <modset-file>",
	Short: "Structurally validate a mod set without executing it",
	Long: `Checks a mod set for duplicate component identifiers, dangling
ordering edges, instructions missing required sources, unknown path
placeholders and over-selected mutually exclusive options.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		components, err := loadComponents(args[0])
		if err != nil {
			return err
		}

		issues := engine.Validate(components, resolverContext(cfg))
		reportIssues(cmd, issues)

		if ports.HasErrors(issues) {
			exitCode = 1
			return nil
		}
		cmd.Printf("mod set is structurally valid (%d component(s))\n", len(components))
		return nil
	},
}
