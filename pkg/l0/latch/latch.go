// Package latch turns sensor edges into a single-shot check request.
package latch

import "github.com/robotalks/gate.go/pkg/l0/irq"

// Latch is a single-shot flag set from the sensor interrupt.
//
// It is armed only while the terminal is idle. Consuming the flag disarms it
// in the same critical section, so a trigger can never slip in between the
// main loop picking up a request and leaving the idle state.
type Latch struct {
	mask     *irq.Mask
	disarmed bool
	flag     bool
}

// New creates an armed Latch.
func New(mask *irq.Mask) *Latch {
	return &Latch{mask: mask}
}

// Trigger is the sensor edge handler. It reports whether the edge was latched.
func (l *Latch) Trigger() (accepted bool) {
	l.mask.Disable()
	if !l.disarmed && !l.flag {
		l.flag, accepted = true, true
	}
	l.mask.Enable()
	return
}

// Consume clears a pending flag and disarms the latch.
func (l *Latch) Consume() (pending bool) {
	l.mask.Disable()
	if pending = l.flag; pending {
		l.flag, l.disarmed = false, true
	}
	l.mask.Enable()
	return
}

// Rearm accepts triggers again, called when the terminal returns to idle.
func (l *Latch) Rearm() {
	l.mask.Do(l.RearmMasked)
}

// RearmMasked is Rearm for a caller already holding the mask, so entering
// idle and arming happen in one critical section.
func (l *Latch) RearmMasked() {
	l.disarmed = false
}

// ArmedMasked is Armed for a caller already holding the mask.
func (l *Latch) ArmedMasked() bool {
	return !l.disarmed
}

// Pending reports whether a trigger is waiting.
func (l *Latch) Pending() (pending bool) {
	l.mask.Do(func() { pending = l.flag })
	return
}

// Armed reports whether triggers are accepted.
func (l *Latch) Armed() (armed bool) {
	l.mask.Do(func() { armed = l.ArmedMasked() })
	return
}
