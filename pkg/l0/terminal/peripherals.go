package terminal

import (
	"time"

	fx "github.com/robotalks/gate.go/pkg/framework"
	"github.com/robotalks/gate.go/pkg/l0/irq"
	"github.com/robotalks/gate.go/pkg/l0/latch"
	"github.com/robotalks/gate.go/pkg/l0/line"
	"github.com/robotalks/gate.go/pkg/l0/tick"
)

// Peripherals groups the interrupt-fed state shared with the main loop.
// Its handler methods are the interrupt entry points: each one updates
// shared state under the mask and then wakes the main loop without blocking.
type Peripherals struct {
	Mask     *irq.Mask
	Receiver *line.Receiver
	Latch    *latch.Latch
	Clock    *tick.Counter
	Waker    fx.Waker
}

// NewPeripherals creates Peripherals sharing one interrupt mask.
func NewPeripherals(capacity int) *Peripherals {
	mask := &irq.Mask{}
	return &Peripherals{
		Mask:     mask,
		Receiver: line.NewReceiver(mask, capacity),
		Latch:    latch.New(mask),
		Clock:    tick.NewCounter(mask),
	}
}

// Write implements io.Writer as the serial receive interrupt.
func (p *Peripherals) Write(data []byte) (int, error) {
	var completed bool
	for _, b := range data {
		if p.Receiver.HandleByte(b) {
			completed = true
		}
	}
	if completed {
		p.wake()
	}
	return len(data), nil
}

// SensorEdge is the sensor interrupt.
func (p *Peripherals) SensorEdge() bool {
	accepted := p.Latch.Trigger()
	if accepted {
		p.wake()
	}
	return accepted
}

// TimerTick is the periodic timer interrupt.
func (p *Peripherals) TimerTick() {
	p.Clock.Advance()
	p.wake()
}

// Timer creates a Runnable generating TimerTick from wall time.
func (p *Peripherals) Timer(period time.Duration) *tick.Timer {
	return &tick.Timer{Counter: p.Clock, Period: period, OnTick: p.wake}
}

func (p *Peripherals) wake() {
	if w := p.Waker; w != nil {
		w.Wake()
	}
}
