package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OldRepublicDevs/modsync/internal/adapters/logging"
	"github.com/OldRepublicDevs/modsync/internal/domain/config"
	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "modsync",
	Short: "A declarative mod-installation engine",
	Long: `Modsync installs game mods by executing ordered instruction programs
against a mod staging area and a game install directory.

A mod set is a list of components with ordering constraints and
instructions (extract, move, copy, rename, delete and friends). Runs can
be real or simulated against a virtual filesystem (dry run).

Mod-set serialization lives outside the engine: a front end registers a
ports.ComponentLoader for its file extension (the database/sql driver
pattern). Without a registered loader the mod-set commands report which
extensions are available.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return exitCode
}

// exitCode is set by commands that map engine results to process exit
// codes (Success is zero, the remaining ActionExitCode variants map to
// consecutive positive integers in declaration order).
var exitCode int

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: modsync.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "JSON log format")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(dryRunCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configured (or default) config file.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "modsync.toml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the console logger from flags and config.
func newLogger(cfg config.Config) ports.Logger {
	level := ports.ParseLevel(cfg.LogLevel)
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLogs),
	)
}

// resolverContext builds the path resolver context from config.
func resolverContext(cfg config.Config) pathres.Context {
	return pathres.Context{
		SourceRoot: cfg.SourceRoot,
		DestRoot:   cfg.DestinationRoot,
		TempRoot:   cfg.EffectiveTempRoot(),
	}
}
