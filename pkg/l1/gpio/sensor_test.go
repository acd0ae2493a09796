package gpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-gpiocdev"

	"github.com/robotalks/gate.go/pkg/l0/line"
	"github.com/robotalks/gate.go/pkg/l0/terminal"
)

func TestSensorTriggersLatchOnFallingEdge(t *testing.T) {
	periph := terminal.NewPeripherals(line.DefaultCapacity)
	s := &Sensor{Chip: "gpiochip0", Offset: 4, Edge: periph.SensorEdge}

	s.HandleEvent(gpiocdev.LineEvent{Offset: 4, Type: gpiocdev.LineEventRisingEdge})
	require.False(t, periph.Latch.Pending())

	s.HandleEvent(gpiocdev.LineEvent{Offset: 4, Type: gpiocdev.LineEventFallingEdge})
	require.True(t, periph.Latch.Pending())
	require.True(t, periph.Latch.Consume())

	s.HandleEvent(gpiocdev.LineEvent{Offset: 4, Type: gpiocdev.LineEventFallingEdge})
	require.False(t, periph.Latch.Pending())
}

func TestSensorOptions(t *testing.T) {
	s := &Sensor{Chip: "gpiochip0", Offset: 2}
	require.Len(t, s.Options(), 4)
	s.Debounce = 5 * time.Millisecond
	require.Len(t, s.Options(), 5)
	require.Equal(t, "gpio-gpiochip0-2", s.Name())
}
