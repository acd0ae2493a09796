package terminal

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/gate.go/pkg/framework"
	"github.com/robotalks/gate.go/pkg/l0/tick"
)

// Position is a zero-based display cell.
type Position struct {
	Row int
	Col int
}

// Display is the text display sink. Calls may block.
type Display interface {
	Clear() error
	WriteText(text string, pos Position) error
}

// Transmitter sends one line to the verifier, appending the terminator.
// Calls may block.
type Transmitter interface {
	SendLine(text string) error
}

// Machine is the terminal state machine.
type Machine struct {
	Protocol Protocol
	Timing   Timing
	Display  Display
	Link     Transmitter
	Observer Observer

	periph *Peripherals

	// state is written under the mask so State can be read elsewhere,
	// the main loop reads it directly.
	state   State
	entered tick.Tick
}

// NewMachine creates a Machine in Idle.
func NewMachine(periph *Peripherals, display Display, link Transmitter) *Machine {
	return &Machine{
		Protocol: DefaultProtocol,
		Timing:   DefaultTiming,
		Display:  display,
		Link:     link,
		periph:   periph,
		entered:  periph.Clock.Now(),
	}
}

// Peripherals returns the interrupt-fed inputs.
func (m *Machine) Peripherals() *Peripherals {
	return m.periph
}

// State returns the current state, safe from any goroutine.
func (m *Machine) State() (s State) {
	m.periph.Mask.Do(func() { s = m.state })
	return
}

// Start shows the ready screen.
func (m *Machine) Start() error {
	return m.show(TextReady)
}

// Step runs one main loop iteration.
func (m *Machine) Step() error {
	var errs fx.AggregatedError

	if m.periph.Latch.Consume() {
		errs.Add(m.dispatch(SensorTriggered, ""))
	}

	if cmd, ok := m.periph.Receiver.Take(); ok {
		ev, payload := m.Protocol.Parse(cmd)
		glog.V(3).Infof("RCV %q (%s) in %s", cmd, ev, m.state)
		errs.Add(m.dispatch(ev, payload))
	}

	if ev, ok := m.timeout(m.periph.Clock.Now()); ok {
		errs.Add(m.dispatch(ev, ""))
	}

	return errs.Aggregate()
}

// Control implements framework.Controller.
func (m *Machine) Control(context.Context) error {
	return m.Step()
}

// AddToLoop implements LoopAdder.
func (m *Machine) AddToLoop(l *fx.Loop) {
	m.periph.Waker = l
	l.AddController(m)
}

func (m *Machine) timeout(now tick.Tick) (Event, bool) {
	switch m.state {
	case Checking:
		if tick.Expired(now, m.entered, m.Timing.CheckTimeout) {
			return CheckTimedOut, true
		}
	case ResultOk, ResultFail:
		if tick.Expired(now, m.entered, m.Timing.HoldTime) {
			return HoldElapsed, true
		}
	}
	return 0, false
}

// action performs the side effects of a transition and returns the next
// state. Errors from sinks never prevent the transition.
type action func(m *Machine, payload string) (State, error)

// transitions is total over (state, event). The heartbeat is answered
// before the table is consulted, its cells are never reached.
var transitions = [numStates][numEvents]action{
	Idle: {
		SensorTriggered:   (*Machine).startCheck,
		HeartbeatReceived: (*Machine).ignore,
		SuccessReceived:   (*Machine).ignore,
		FailureReceived:   (*Machine).ignore,
		UnknownReceived:   (*Machine).ignore,
		CheckTimedOut:     (*Machine).ignore,
		HoldElapsed:       (*Machine).ignore,
	},
	Checking: {
		SensorTriggered:   (*Machine).ignore,
		HeartbeatReceived: (*Machine).ignore,
		SuccessReceived:   (*Machine).welcome,
		FailureReceived:   (*Machine).notFound,
		UnknownReceived:   (*Machine).ignore,
		CheckTimedOut:     (*Machine).notFound,
		HoldElapsed:       (*Machine).ignore,
	},
	ResultOk: {
		SensorTriggered:   (*Machine).ignore,
		HeartbeatReceived: (*Machine).ignore,
		SuccessReceived:   (*Machine).ignore,
		FailureReceived:   (*Machine).ignore,
		UnknownReceived:   (*Machine).ignore,
		CheckTimedOut:     (*Machine).ignore,
		HoldElapsed:       (*Machine).backToIdle,
	},
	ResultFail: {
		SensorTriggered:   (*Machine).ignore,
		HeartbeatReceived: (*Machine).ignore,
		SuccessReceived:   (*Machine).ignore,
		FailureReceived:   (*Machine).ignore,
		UnknownReceived:   (*Machine).ignore,
		CheckTimedOut:     (*Machine).ignore,
		HoldElapsed:       (*Machine).backToIdle,
	},
}

func (m *Machine) dispatch(ev Event, payload string) error {
	if ev == HeartbeatReceived {
		return m.acknowledge()
	}
	from := m.state
	if !from.IsValid() || ev < 0 || ev >= numEvents {
		return fmt.Errorf("no transition for %s in %s", ev, from)
	}
	next, err := transitions[from][ev](m, payload)
	if err != nil {
		glog.Warningf("%s in %s: %v", ev, from, err)
	}
	if next == from {
		return err
	}
	m.enter(next)
	glog.V(1).Infof("%s -(%s)-> %s", from, ev, next)
	if o := m.Observer; o != nil {
		o.Transitioned(Transition{
			From:    from,
			To:      next,
			Event:   ev,
			Payload: payload,
			Tick:    m.entered,
		})
	}
	return err
}

// enter switches state. Entering Idle arms the latch in the same critical
// section, no edge can observe Idle with the latch still disarmed.
func (m *Machine) enter(s State) {
	now := m.periph.Clock.Now()
	m.periph.Mask.Do(func() {
		m.state = s
		if s == Idle {
			m.periph.Latch.RearmMasked()
		}
	})
	m.entered = now
}

func (m *Machine) ignore(payload string) (State, error) {
	glog.V(2).Infof("ignored in %s: %q", m.state, payload)
	return m.state, nil
}

func (m *Machine) acknowledge() error {
	return m.send(m.Protocol.Ack)
}

func (m *Machine) startCheck(string) (State, error) {
	var errs fx.AggregatedError
	m.periph.Receiver.Reset()
	errs.Add(m.send(m.Protocol.Request...))
	errs.Add(m.show(TextChecking))
	return Checking, errs.Aggregate()
}

func (m *Machine) welcome(payload string) (State, error) {
	return ResultOk, m.show(TextWelcome, payload)
}

func (m *Machine) notFound(string) (State, error) {
	return ResultFail, m.show(TextNotFound)
}

func (m *Machine) backToIdle(string) (State, error) {
	var errs fx.AggregatedError
	errs.Add(m.show(TextReady))
	errs.Add(m.send(m.Protocol.Ready))
	return Idle, errs.Aggregate()
}

// show clears the display and writes one text per row.
func (m *Machine) show(rows ...string) error {
	if m.Display == nil {
		return nil
	}
	var errs fx.AggregatedError
	if err := m.Display.Clear(); err != nil {
		errs.Add(fmt.Errorf("display clear: %w", err))
	}
	for row, text := range rows {
		if err := m.Display.WriteText(text, Position{Row: row}); err != nil {
			errs.Add(fmt.Errorf("display write: %w", err))
		}
	}
	return errs.Aggregate()
}

func (m *Machine) send(lines ...string) error {
	if m.Link == nil {
		return nil
	}
	var errs fx.AggregatedError
	for _, text := range lines {
		glog.V(3).Infof("SND %q", text)
		if err := m.Link.SendLine(text); err != nil {
			errs.Add(fmt.Errorf("send %q: %w", text, err))
		}
	}
	return errs.Aggregate()
}
