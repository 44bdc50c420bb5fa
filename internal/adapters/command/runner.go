// Package command provides the OS-backed ports.ProcessRunner used by
// Patcher and Execute instructions.
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// Runner executes external tools through os/exec.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run launches executablePath in workingDir and returns its exit code.
// A missing executable is ports.ErrExecutableNotFound, distinct from a
// process that started and failed.
func (r *Runner) Run(ctx context.Context, executablePath, workingDir string, args []string) (int, error) {
	info, err := os.Stat(executablePath)
	if err != nil || info.IsDir() {
		return -1, fmt.Errorf("%w: %s", ports.ErrExecutableNotFound, executablePath)
	}

	cmd := exec.CommandContext(ctx, executablePath, args...)
	cmd.Dir = workingDir

	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("%w: failed to run %q: %v", ports.ErrIO, executablePath, err)
	}
	return 0, nil
}

// Ensure Runner implements ProcessRunner.
var _ ports.ProcessRunner = (*Runner)(nil)
