// Package tick provides the free-running timer counter used for timeouts.
package tick

import (
	"context"
	"time"

	"github.com/robotalks/gate.go/pkg/l0/irq"
)

// DefaultPeriod is the timer interrupt period.
const DefaultPeriod = 10 * time.Millisecond

// Tick is a 16-bit counter value. It wraps, so two ticks must only be
// compared through Since.
type Tick uint16

// Since returns the ticks elapsed from ref to now, modulo the counter width.
func Since(now, ref Tick) Tick {
	return now - ref
}

// Expired reports whether more than limit ticks elapsed from ref to now.
func Expired(now, ref, limit Tick) bool {
	return Since(now, ref) > limit
}

// Duration converts a tick count to wall time for the given period.
func (t Tick) Duration(period time.Duration) time.Duration {
	return time.Duration(t) * period
}

// Counter is advanced from the timer interrupt and read by the main loop.
type Counter struct {
	mask *irq.Mask
	now  Tick
}

// NewCounter creates a Counter starting at zero.
func NewCounter(mask *irq.Mask) *Counter {
	return &Counter{mask: mask}
}

// Advance is the timer interrupt handler.
func (c *Counter) Advance() {
	c.mask.Do(func() { c.now++ })
}

// AdvanceBy advances n ticks, one interrupt each.
func (c *Counter) AdvanceBy(n int) {
	for i := 0; i < n; i++ {
		c.Advance()
	}
}

// Now reads the current count.
func (c *Counter) Now() (now Tick) {
	c.mask.Do(func() { now = c.now })
	return
}

// Set overrides the current count.
func (c *Counter) Set(t Tick) {
	c.mask.Do(func() { c.now = t })
}

// Timer drives a Counter from wall time.
type Timer struct {
	Counter *Counter
	Period  time.Duration
	// OnTick is called after each advance, from the timer goroutine.
	// It must not block.
	OnTick func()
}

// Run implements Runnable.
func (t *Timer) Run(ctx context.Context) error {
	period := t.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Counter.Advance()
			if fn := t.OnTick; fn != nil {
				fn()
			}
		}
	}
}
