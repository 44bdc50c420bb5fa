package interpreter

import (
	"fmt"
	"strings"

	"github.com/OldRepublicDevs/modsync/internal/domain/component"
)

// EngineError is a typed instruction failure carrying the exit code and
// the owning component/instruction context. Exit codes remain the
// interpreter's public result surface; EngineError is the structured
// record behind every failure log line.
type EngineError struct {
	Code        ActionExitCode
	Action      component.Action
	Component   string // owning component identifier, empty if unattached
	Instruction int    // index within the owning instruction list
	Underlying  error
}

// newEngineError builds an EngineError from an instruction and its
// failure, resolving the owning component when the back-reference is set.
func newEngineError(code ActionExitCode, instr *component.Instruction, index int, err error) *EngineError {
	e := &EngineError{
		Code:        code,
		Action:      instr.Action,
		Instruction: index,
		Underlying:  err,
	}
	if parent := instr.Parent(); parent != nil {
		e.Component = parent.ID.String()
	}
	return e
}

// Error returns the formatted error message.
func (e *EngineError) Error() string {
	var parts []string

	if e.Component != "" {
		parts = append(parts, fmt.Sprintf("component %s", e.Component))
	}
	parts = append(parts, fmt.Sprintf("instruction %d (%s)", e.Instruction, e.Action))

	msg := strings.Join(parts, ", ") + ": " + e.Code.String()
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *EngineError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s failed", e.Code, e.Action))
	if e.Component != "" {
		b.WriteString(fmt.Sprintf("\n  Component: %s", e.Component))
	}
	b.WriteString(fmt.Sprintf("\n  Instruction: %d", e.Instruction))
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}
	return b.String()
}
