package component

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// InstallState represents a component's position in its install lifecycle.
type InstallState string

const (
	// StateNotStarted indicates the component has not begun installing.
	StateNotStarted InstallState = "notstarted"
	// StateInProgress indicates instructions are being executed.
	StateInProgress InstallState = "inprogress"
	// StateCompleted indicates every instruction succeeded.
	StateCompleted InstallState = "completed"
	// StateFailed indicates an instruction failed or was cancelled.
	StateFailed InstallState = "failed"
)

// Events driving the install state machine.
const (
	eventBegin    = "BEGIN"
	eventComplete = "COMPLETE"
	eventFail     = "FAIL"
)

// installContext is the statekit context type. The tracker keeps no
// mutable context; state alone is the payload.
type installContext struct{}

// installTracker wraps a statekit interpreter so transitions are strictly
// monotonic: completed and failed have no outgoing transitions, so stray
// events cannot regress a finished component.
type installTracker struct {
	interp  *statekit.Interpreter[installContext]
	current InstallState
}

// buildInstallMachine constructs the component install state machine.
func buildInstallMachine() (*statekit.Interpreter[installContext], error) {
	machine, err := statekit.NewMachine[installContext]("component-install").
		WithInitial(statekit.StateID(StateNotStarted)).
		WithContext(installContext{}).
		State(statekit.StateID(StateNotStarted)).
		On(eventBegin).Target(statekit.StateID(StateInProgress)).Done().
		State(statekit.StateID(StateInProgress)).
		On(eventComplete).Target(statekit.StateID(StateCompleted)).
		On(eventFail).Target(statekit.StateID(StateFailed)).Done().
		State(statekit.StateID(StateCompleted)).Done().
		State(statekit.StateID(StateFailed)).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build install state machine: %w", err)
	}
	return statekit.NewInterpreter(machine), nil
}

// newInstallTracker creates and starts a tracker in StateNotStarted.
func newInstallTracker() (*installTracker, error) {
	interp, err := buildInstallMachine()
	if err != nil {
		return nil, err
	}
	interp.Start()
	return &installTracker{interp: interp, current: StateNotStarted}, nil
}

// Begin moves the tracker to InProgress.
func (t *installTracker) Begin() {
	t.interp.Send(statekit.Event{Type: eventBegin})
	t.current = InstallState(t.interp.State().Value)
}

// Complete moves the tracker to Completed and stops the interpreter.
func (t *installTracker) Complete() {
	t.finish(eventComplete)
}

// Fail moves the tracker to Failed and stops the interpreter.
func (t *installTracker) Fail() {
	t.finish(eventFail)
}

func (t *installTracker) finish(event string) {
	if t.interp == nil {
		return
	}
	t.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	t.current = InstallState(t.interp.State().Value)
	t.interp.Stop()
	t.interp = nil
}

// Current returns the last observed state.
func (t *installTracker) Current() InstallState {
	if t.interp != nil {
		t.current = InstallState(t.interp.State().Value)
	}
	return t.current
}
