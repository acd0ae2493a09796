package sh

import (
	"bytes"
	"strings"

	fx "github.com/robotalks/gate.go/pkg/framework"
	"github.com/robotalks/gate.go/pkg/l0/terminal"
	"github.com/robotalks/gate.go/pkg/l1/comm"
	"github.com/robotalks/gate.go/pkg/l1/display"
	"github.com/robotalks/gate.go/pkg/l1/env"
)

// Bench runs the terminal core against an in-memory display and a captured
// link. Interrupts are injected explicitly and each one is followed by a
// main loop iteration.
type Bench struct {
	Periph  *terminal.Peripherals
	Machine *terminal.Machine
	Display *display.Text

	Transitions []terminal.Transition

	out bytes.Buffer
}

// NewBench creates a Bench from a validated config.
func NewBench(conf *env.Config) (*Bench, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	b := &Bench{
		Periph:  terminal.NewPeripherals(conf.BufferCapacity),
		Display: display.NewText(),
	}
	b.Machine = terminal.NewMachine(b.Periph, b.Display, comm.NewLineWriter(&b.out))
	b.Machine.Timing = conf.Timing()
	b.Machine.Observer = terminal.ObserverFunc(func(tr terminal.Transition) {
		b.Transitions = append(b.Transitions, tr)
	})
	return b, nil
}

// Start shows the ready screen.
func (b *Bench) Start() error {
	return b.Machine.Start()
}

// Sensor fires the sensor interrupt.
func (b *Bench) Sensor() (bool, error) {
	accepted := b.Periph.SensorEdge()
	return accepted, b.Machine.Step()
}

// Recv delivers a line from the verifier.
func (b *Bench) Recv(line string) error {
	b.Periph.Write([]byte(line + comm.LineTerminator))
	return b.Machine.Step()
}

// Tick fires n timer interrupts.
func (b *Bench) Tick(n int) error {
	var errs fx.AggregatedError
	for i := 0; i < n; i++ {
		b.Periph.TimerTick()
		errs.Add(b.Machine.Step())
	}
	return errs.Aggregate()
}

// Sent returns and clears the lines transmitted so far.
func (b *Bench) Sent() []string {
	text := b.out.String()
	b.out.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, comm.LineTerminator), comm.LineTerminator)
}
