// Package engine orders components, drives their instruction lists
// through the interpreter and tracks per-component install state.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
	"github.com/OldRepublicDevs/modsync/internal/domain/interpreter"
	"github.com/OldRepublicDevs/modsync/internal/domain/ordering"
	"github.com/OldRepublicDevs/modsync/internal/domain/pathres"
	"github.com/OldRepublicDevs/modsync/internal/ports"
)

// Engine executes component batches against one bound provider.
type Engine struct {
	provider ports.Provider
	interp   *interpreter.Interpreter
	logger   ports.Logger
}

// New creates an Engine bound to a provider, process runner and resolver
// context.
func New(provider ports.Provider, runner ports.ProcessRunner, logger ports.Logger, paths pathres.Context) *Engine {
	return &Engine{
		provider: provider,
		interp:   interpreter.New(provider, runner, logger, paths),
		logger:   logger,
	}
}

// ExecuteBatch installs the selected components of the list in a valid
// install order and returns each executed component's final exit code.
//
// A failed component does not abort the batch; the next component still
// runs. Cancellation stops the batch at the next pre-instruction check,
// leaving whatever partial state the last completed instruction produced.
// An unsatisfiable install order is returned as an error before anything
// executes.
func (e *Engine) ExecuteBatch(ctx context.Context, components []*component.Component) (map[uuid.UUID]interpreter.ActionExitCode, error) {
	_, ordered, err := ordering.ConfirmComponentsInstallOrder(components)
	if err != nil {
		return nil, err
	}

	results := make(map[uuid.UUID]interpreter.ActionExitCode)

	for _, c := range ordered {
		if !c.Selected {
			continue
		}
		if ctx.Err() != nil {
			results[c.ID] = interpreter.Cancelled
			break
		}

		e.logger.Info(ctx, "installing component",
			ports.F("component", c.ID.String()), ports.F("name", c.Name))

		if err := c.BeginInstall(); err != nil {
			e.logger.Error(ctx, "failed to start component install",
				ports.F("component", c.ID.String()), ports.F("error", err))
			results[c.ID] = interpreter.IOFailure
			continue
		}

		code := e.runInstructions(ctx, c, components)
		results[c.ID] = code
		c.FinishInstall(code == interpreter.Success)

		if code == interpreter.Cancelled || code == interpreter.UserAbort {
			break
		}
	}

	return results, nil
}

func (e *Engine) runInstructions(ctx context.Context, c *component.Component, components []*component.Component) interpreter.ActionExitCode {
	for i, instr := range c.Instructions {
		if ctx.Err() != nil {
			return interpreter.Cancelled
		}
		if code := e.interp.ExecuteSingleInstruction(ctx, instr, i, components, false); code != interpreter.Success {
			e.logger.Error(ctx, "component failed",
				ports.F("component", c.ID.String()),
				ports.F("instruction", i),
				ports.F("exitCode", code.String()))
			return code
		}
	}
	return interpreter.Success
}

// Issues returns the validation issues recorded by the bound provider,
// or nil when the provider does not record any (the real provider).
func (e *Engine) Issues() []ports.Issue {
	if recorder, ok := e.provider.(ports.IssueRecorder); ok {
		return recorder.Issues()
	}
	return nil
}

// DryRunPassed reports whether a simulated batch can be considered a
// pass: no recorded issue of Error severity. Exit codes are a separate
// channel; a dry run can fail on issues alone.
func (e *Engine) DryRunPassed() bool {
	return !ports.HasErrors(e.Issues())
}
