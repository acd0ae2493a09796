package terminal

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/gate.go/pkg/l0/line"
	"github.com/robotalks/gate.go/pkg/l0/tick"
)

type testDisplay struct {
	rows   map[int]string
	clears int
	err    error
}

func (d *testDisplay) Clear() error {
	d.clears++
	d.rows = make(map[int]string)
	return d.err
}

func (d *testDisplay) WriteText(text string, pos Position) error {
	if d.rows == nil {
		d.rows = make(map[int]string)
	}
	d.rows[pos.Row] = text
	return d.err
}

func (d *testDisplay) row(n int) string {
	return d.rows[n]
}

type testLink struct {
	sent []string
	err  error
}

func (l *testLink) SendLine(text string) error {
	l.sent = append(l.sent, text)
	return l.err
}

func (l *testLink) take() []string {
	sent := l.sent
	l.sent = nil
	return sent
}

type machineTestEnv struct {
	t           *testing.T
	periph      *Peripherals
	display     *testDisplay
	link        *testLink
	machine     *Machine
	transitions []Transition
}

func newMachineTestEnv(t *testing.T) *machineTestEnv {
	env := &machineTestEnv{
		t:       t,
		periph:  NewPeripherals(line.DefaultCapacity),
		display: &testDisplay{},
		link:    &testLink{},
	}
	env.machine = NewMachine(env.periph, env.display, env.link)
	env.machine.Observer = ObserverFunc(func(tr Transition) {
		env.transitions = append(env.transitions, tr)
	})
	require.NoError(t, env.machine.Start())
	return env
}

func (e *machineTestEnv) step() *machineTestEnv {
	require.NoError(e.t, e.machine.Step())
	return e
}

func (e *machineTestEnv) sensor() *machineTestEnv {
	e.periph.SensorEdge()
	return e.step()
}

func (e *machineTestEnv) recv(cmd string) *machineTestEnv {
	e.periph.Write([]byte(cmd + "\r\n"))
	return e.step()
}

func (e *machineTestEnv) ticks(n int) *machineTestEnv {
	e.periph.Clock.AdvanceBy(n)
	return e.step()
}

func (e *machineTestEnv) expectState(s State) *machineTestEnv {
	require.Equal(e.t, s, e.machine.State())
	return e
}

func (e *machineTestEnv) expectSent(lines ...string) *machineTestEnv {
	sent := e.link.take()
	if len(lines) == 0 {
		require.Empty(e.t, sent)
	} else {
		require.Equal(e.t, lines, sent)
	}
	return e
}

func (e *machineTestEnv) expectDisplay(rows ...string) *machineTestEnv {
	for n, text := range rows {
		require.Equal(e.t, text, e.display.row(n), "row %d", n)
	}
	require.Len(e.t, e.display.rows, len(rows))
	return e
}

func (e *machineTestEnv) checking() *machineTestEnv {
	return e.sensor().expectState(Checking).expectSent("NG", "CK")
}

func TestMachineStartsIdle(t *testing.T) {
	newMachineTestEnv(t).
		expectState(Idle).
		expectDisplay(TextReady).
		expectSent()
}

func TestMachineSensorStartsCheck(t *testing.T) {
	env := newMachineTestEnv(t).
		sensor().
		expectState(Checking).
		expectSent("NG", "CK").
		expectDisplay(TextChecking)
	require.Len(t, env.transitions, 1)
	require.Equal(t, Transition{From: Idle, To: Checking, Event: SensorTriggered}, env.transitions[0])
}

func TestMachineSensorIgnoredWhileBusy(t *testing.T) {
	env := newMachineTestEnv(t).checking()
	for _, s := range []State{Checking, ResultOk} {
		require.False(t, env.periph.SensorEdge(), "state %s", s)
		require.False(t, env.periph.Latch.Pending())
		env.step().expectState(s).expectSent()
		if s == Checking {
			env.recv("Talice")
		}
	}
}

func TestMachineSuccess(t *testing.T) {
	newMachineTestEnv(t).
		checking().
		recv("Talice").
		expectState(ResultOk).
		expectDisplay(TextWelcome, "alice").
		expectSent()
}

func TestMachineFailure(t *testing.T) {
	newMachineTestEnv(t).
		checking().
		recv("F").
		expectState(ResultFail).
		expectDisplay(TextNotFound).
		expectSent()
}

func TestMachineCheckTimeout(t *testing.T) {
	newMachineTestEnv(t).
		checking().
		ticks(1500).
		expectState(Checking).
		ticks(1).
		expectState(ResultFail).
		expectDisplay(TextNotFound).
		expectSent()
}

func TestMachineHoldReturnsToIdle(t *testing.T) {
	for _, result := range []string{"Tbob", "F"} {
		t.Run(result, func(t *testing.T) {
			env := newMachineTestEnv(t).
				checking().
				recv(result).
				ticks(500).
				expectSent().
				ticks(1).
				expectState(Idle).
				expectDisplay(TextReady).
				expectSent("RD")
			require.True(t, env.periph.Latch.Armed())
			env.ticks(2000).expectState(Idle).expectSent()
		})
	}
}

func TestMachineHeartbeatInAnyState(t *testing.T) {
	env := newMachineTestEnv(t)
	env.recv("RUOK").expectState(Idle).expectSent("CF")
	env.checking().recv("RUOK").expectState(Checking).expectSent("CF")
	env.recv("Tcarol").recv("RUOK").expectState(ResultOk).expectSent("CF")
	env.ticks(501).expectSent("RD")
	env.checking().recv("F").recv("RUOK").expectState(ResultFail).expectSent("CF")
}

func TestMachineHeartbeatDoesNotResetTimeout(t *testing.T) {
	newMachineTestEnv(t).
		checking().
		ticks(1000).
		recv("RUOK").
		expectSent("CF").
		ticks(501).
		expectState(ResultFail)
}

func TestMachineIgnoresUnmatchedCommands(t *testing.T) {
	env := newMachineTestEnv(t)
	for _, cmd := range []string{"Talice", "F", "", "RD", "ruok"} {
		env.recv(cmd).expectState(Idle).expectSent().expectDisplay(TextReady)
	}
	env.checking()
	for _, cmd := range []string{"", "FF", "f", "X", "RUOK2"} {
		env.recv(cmd).expectState(Checking).expectSent().expectDisplay(TextChecking)
	}
	env.recv("F")
	for _, cmd := range []string{"Talice", "F"} {
		env.recv(cmd).expectState(ResultFail).expectDisplay(TextNotFound)
	}
}

func TestMachineDiscardsStaleLineOnSensor(t *testing.T) {
	env := newMachineTestEnv(t)
	env.periph.Write([]byte("Tmallory\n"))
	env.periph.SensorEdge()
	env.step().expectState(Checking).expectSent("NG", "CK").expectDisplay(TextChecking)
	env.step().expectState(Checking)
}

func TestMachineSuccessEmptyPayload(t *testing.T) {
	newMachineTestEnv(t).
		checking().
		recv("T").
		expectState(ResultOk).
		expectDisplay(TextWelcome, "")
}

func TestMachineTimeoutAcrossWrap(t *testing.T) {
	for _, start := range []tick.Tick{0, 0xffff - 1500, 0xffff - 1, 0xffff} {
		env := newMachineTestEnv(t)
		env.periph.Clock.Set(start)
		env.checking().
			ticks(1500).expectState(Checking).
			ticks(1).expectState(ResultFail).
			ticks(500).expectState(ResultFail).
			ticks(1).expectState(Idle).expectSent("RD")
	}
}

func TestMachineEndToEnd(t *testing.T) {
	env := newMachineTestEnv(t).
		expectDisplay(TextReady).
		sensor().
		expectSent("NG", "CK").
		expectDisplay(TextChecking).
		ticks(700).
		recv("Tbob").
		expectState(ResultOk).
		expectDisplay(TextWelcome, "bob").
		ticks(501).
		expectDisplay(TextReady).
		expectSent("RD").
		expectState(Idle)

	var path []State
	for _, tr := range env.transitions {
		path = append(path, tr.To)
	}
	require.Equal(t, []State{Checking, ResultOk, Idle}, path)
	require.Equal(t, "bob", env.transitions[1].Payload)
}

func TestMachineSinkErrorsDoNotBlockTransitions(t *testing.T) {
	env := newMachineTestEnv(t)
	errDisplay, errLink := errors.New("lcd"), errors.New("uart")
	env.display.err, env.link.err = errDisplay, errLink

	env.periph.SensorEdge()
	err := env.machine.Step()
	require.ErrorIs(t, err, errDisplay)
	require.ErrorIs(t, err, errLink)
	env.expectState(Checking).expectSent("NG", "CK")

	env.periph.Clock.AdvanceBy(1501)
	require.ErrorIs(t, env.machine.Step(), errDisplay)
	env.expectState(ResultFail)

	env.periph.Clock.AdvanceBy(501)
	require.Error(t, env.machine.Step())
	env.expectState(Idle).expectSent("RD")
}

func TestTransitionTableIsTotal(t *testing.T) {
	for s := Idle; s < numStates; s++ {
		for ev := SensorTriggered; ev < numEvents; ev++ {
			require.NotNil(t, transitions[s][ev], "%s/%s", s, ev)

			env := newMachineTestEnv(t)
			env.machine.state = s
			require.NoError(t, env.machine.dispatch(ev, "x"))
			next := env.machine.State()
			require.True(t, next.IsValid(), "%s/%s -> %s", s, ev, next)
		}
	}
}

func TestStateAndEventNames(t *testing.T) {
	require.Equal(t, "result-ok", ResultOk.String())
	require.Equal(t, "state(9)", State(9).String())
	require.Equal(t, "check-timeout", CheckTimedOut.String())
	require.False(t, State(-1).IsValid())
}

func TestMachineAcceptsSensorRightAfterIdle(t *testing.T) {
	env := newMachineTestEnv(t).checking().recv("F")
	var accepted []bool
	env.machine.Observer = ObserverFunc(func(tr Transition) {
		if tr.To == Idle {
			accepted = append(accepted, env.periph.SensorEdge())
		}
	})
	env.ticks(501).expectState(Idle).expectSent("RD")
	require.Equal(t, []bool{true}, accepted)
	env.step().expectState(Checking).expectSent("NG", "CK")
}

func TestMachineIdleAlwaysArmed(t *testing.T) {
	env := newMachineTestEnv(t)
	m, periph := env.machine, env.periph

	var (
		wg         sync.WaitGroup
		violations int
	)
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			periph.Mask.Do(func() {
				if m.state == Idle && !periph.Latch.ArmedMasked() {
					violations++
				}
			})
		}
	}()

	for i := 0; i < 2000; i++ {
		require.True(t, periph.Latch.Trigger())
		periph.Mask.Do(func() { m.state = ResultFail })
		require.True(t, periph.Latch.Consume())
		m.enter(Idle)
	}
	close(stop)
	wg.Wait()
	require.Zero(t, violations)
}
