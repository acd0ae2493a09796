// Package gpio delivers the presence sensor edge from a GPIO character device.
package gpio

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/warthog618/go-gpiocdev"
)

// Consumer labels the requested line.
const Consumer = "gated"

// Sensor watches the falling edge of an active-low sensor line.
type Sensor struct {
	Chip     string
	Offset   int
	Debounce time.Duration
	// Edge is the sensor interrupt, normally terminal.Peripherals.SensorEdge.
	Edge func() bool
}

// Name implements framework.Named.
func (s *Sensor) Name() string {
	return fmt.Sprintf("gpio-%s-%d", s.Chip, s.Offset)
}

// Options returns the line request options.
func (s *Sensor) Options() []gpiocdev.LineReqOption {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer(Consumer),
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(s.HandleEvent),
	}
	if s.Debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(s.Debounce))
	}
	return opts
}

// Run implements Runnable. The line is held until ctx is done.
func (s *Sensor) Run(ctx context.Context) error {
	l, err := gpiocdev.RequestLine(s.Chip, s.Offset, s.Options()...)
	if err != nil {
		return fmt.Errorf("request %s line %d: %w", s.Chip, s.Offset, err)
	}
	defer l.Close()
	glog.Infof("sensor on %s line %d", s.Chip, s.Offset)
	<-ctx.Done()
	return ctx.Err()
}

// HandleEvent is the line event handler.
func (s *Sensor) HandleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	accepted := s.Edge != nil && s.Edge()
	glog.V(2).Infof("sensor edge at %v accepted=%v", evt.Timestamp, accepted)
}
