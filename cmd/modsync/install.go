package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/OldRepublicDevs/modsync/internal/adapters/archive"
	"github.com/OldRepublicDevs/modsync/internal/adapters/command"
	"github.com/OldRepublicDevs/modsync/internal/adapters/filesystem"
	"github.com/OldRepublicDevs/modsync/internal/domain/component"
	"github.com/OldRepublicDevs/modsync/internal/domain/engine"
	"github.com/OldRepublicDevs/modsync/internal/domain/interpreter"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

var installCmd = &cobra.Command{
	Use:   "install <modset-file>",
	Short: "Install the selected components of a mod set",
	Args:  cobra.ExactArgs(1),
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
		opts := []filesystem.RealOption{}
		if cfg.ParallelOps {
			opts = append(opts, filesystem.WithParallelOps(cfg.ParallelLimit))
		}
		provider := filesystem.NewRealProvider(archive.NewZipCodec(), opts...)
		eng := engine.New(provider, command.NewRunner(), logger, resolverContext(cfg))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		results, err := eng.ExecuteBatch(ctx, components)
		if err != nil {
			return err
		}
		reportResults(cmd, components, results)
		exitCode = worstExitCode(results)
		return nil
	},
}

// loadComponents loads a mod set through the registered serializer.
func loadComponents(path string) ([]*component.Component, error) {
	loader, err := ports.LoaderFor(path)
	if err != nil {
		return nil, err
	}
	raw, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load mod set %q: %w", path, err)
	}
	components, ok := raw.([]*component.Component)
	if !ok {
		return nil, fmt.Errorf("loader for %q returned %T, want a component list", path, raw)
	}
	for _, c := range components {
		c.AttachInstructions()
	}
	return components, nil
}

// reportResults prints one line per executed component in install order.
func reportResults(cmd *cobra.Command, components []*component.Component, results map[uuid.UUID]interpreter.ActionExitCode) {
	for _, c := range components {
		code, ran := results[c.ID]
		if !ran {
			continue
		}
		cmd.Printf("%-40s %s\n", c.Name, code)
	}
}

// worstExitCode returns the highest exit code of the batch, which becomes
// the process exit code per the stable integer mapping.
func worstExitCode(results map[uuid.UUID]interpreter.ActionExitCode) int {
	worst := interpreter.Success
	for _, code := range results {
		if code > worst {
			worst = code
		}
	}
	return int(worst)
}
