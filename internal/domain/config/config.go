// Package config loads the engine's run configuration from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Errors for configuration loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrMissingRoot       = errors.New("missing required root directory")
)

// Config is the process-wide run configuration: the three roots and the
// bulk-operation parallelism knobs.
type Config struct {
	// SourceRoot is the mod staging area where downloaded archives live.
	SourceRoot string `toml:"source_root" yaml:"source_root"`
	// DestinationRoot is the game install directory.
	DestinationRoot string `toml:"destination_root" yaml:"destination_root"`
	// TempRoot is scratch space for intermediate extraction.
	TempRoot string `toml:"temp_root" yaml:"temp_root"`

	// ParallelOps enables parallel fan-out inside bulk file operations.
	ParallelOps bool `toml:"parallel_ops" yaml:"parallel_ops"`
	// ParallelLimit bounds the fan-out; zero means one goroutine per source.
	ParallelLimit int `toml:"parallel_limit" yaml:"parallel_limit"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the configuration defaults. The roots have no sensible
// defaults and must come from the file or flags.
func Default() Config {
	return Config{
		ParallelLimit: 4,
		LogLevel:      "info",
	}
}

// Load reads a configuration file, chosen by extension (.toml, .yaml or
// .yml), over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %q: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return cfg, nil
}

// Validate checks that the source and destination roots are set and
// absolute, and that temp_root, when set, is absolute.
func (c Config) Validate() error {
	for name, root := range map[string]string{
		"source_root":      c.SourceRoot,
		"destination_root": c.DestinationRoot,
	} {
		if root == "" {
			return fmt.Errorf("%w: %s", ErrMissingRoot, name)
		}
		if !filepath.IsAbs(root) {
			return fmt.Errorf("%s must be an absolute path, got %q", name, root)
		}
	}
	if c.TempRoot != "" && !filepath.IsAbs(c.TempRoot) {
		return fmt.Errorf("temp_root must be an absolute path, got %q", c.TempRoot)
	}
	return nil
}

// EffectiveTempRoot returns the configured temp root, or the OS temp
// directory when unset.
func (c Config) EffectiveTempRoot() string {
	if c.TempRoot != "" {
		return c.TempRoot
	}
	return os.TempDir()
}
