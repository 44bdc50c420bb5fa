package main

import (
	"github.com/spf13/cobra"

	"github.com/OldRepublicDevs/modsync/internal/adapters/archive"
	"github.com/OldRepublicDevs/modsync/internal/adapters/filesystem"
	"github.com/OldRepublicDevs/modsync/internal/domain/engine"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run <modset-file>",
	Short: "Simulate an install against a virtual filesystem",
	Long: `Simulates the full install without modifying any file. The virtual
provider tracks every path the run would produce and records validation
issues; any error-severity issue fails the dry run even when every
instruction reports success.`,
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

		logger := newLogger(cfg)
		provider := filesystem.NewVirtualProvider(archive.NewZipCodec())
		if err := provider.InitializeFromDisk(cfg.SourceRoot, cfg.DestinationRoot); err != nil {
			return err
		}

		eng := engine.New(provider, ports.NewNopProcessRunner(), logger, resolverContext(cfg))

		results, err := eng.ExecuteBatch(cmd.Context(), components)
		if err != nil {
			return err
		}
		reportResults(cmd, components, results)
		reportIssues(cmd, eng.Issues())

		exitCode = worstExitCode(results)
		if exitCode == 0 && !eng.DryRunPassed() {
			exitCode = 1
		}
		return nil
	},
}

// reportIssues prints recorded validation issues grouped by severity.
func reportIssues(cmd *cobra.Command, issues []ports.Issue) {
	for _, severity := range []ports.IssueSeverity{ports.SeverityError, ports.SeverityWarning, ports.SeverityInfo} {
		for _, issue := range issues {
			if issue.Severity != severity {
				continue
			}
			if issue.Path != "" {
				cmd.Printf("[%s] %s: %s (%s)\n", issue.Severity, issue.Category, issue.Message, issue.Path)
			} else {
				cmd.Printf("[%s] %s: %s\n", issue.Severity, issue.Category, issue.Message)
			}
		}
	}
}
