package terminal

import (
	"fmt"

	"github.com/robotalks/gate.go/pkg/l0/tick"
)

// State is the terminal state.
type State int

// Terminal states.
const (
	Idle State = iota
	Checking
	ResultOk
	ResultFail

	numStates
)

var stateNames = [numStates]string{
	Idle:       "idle",
	Checking:   "checking",
	ResultOk:   "result-ok",
	ResultFail: "result-fail",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsValid reports whether s is one of the defined states.
func (s State) IsValid() bool {
	return s >= Idle && s < numStates
}

// Event is an input to the transition table.
type Event int

// Events.
const (
	SensorTriggered Event = iota
	HeartbeatReceived
	SuccessReceived
	FailureReceived
	UnknownReceived
	CheckTimedOut
	HoldElapsed

	numEvents
)

var eventNames = [numEvents]string{
	SensorTriggered:   "sensor",
	HeartbeatReceived: "heartbeat",
	SuccessReceived:   "success",
	FailureReceived:   "failure",
	UnknownReceived:   "unknown",
	CheckTimedOut:     "check-timeout",
	HoldElapsed:       "hold-elapsed",
}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e >= 0 && e < numEvents {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Transition describes a state change.
type Transition struct {
	From    State
	To      State
	Event   Event
	Payload string
	Tick    tick.Tick
}

// Observer is notified after each state change, from the main loop.
type Observer interface {
	Transitioned(Transition)
}

// ObserverFunc is the func form of Observer.
type ObserverFunc func(Transition)

// Transitioned implements Observer.
func (f ObserverFunc) Transitioned(t Transition) {
	f(t)
}
