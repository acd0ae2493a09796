package bench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/gate.go/pkg/cli/sh"
)

var (
	// SensorCmd fires the sensor interrupt.
	SensorCmd = ishell.Cmd{
		Name:    "sensor",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			accepted, err := sh.BenchFrom(c).Sensor()
			sh.Print(c, accepted, func() string {
				if accepted {
					return "accepted"
				}
				return "ignored"
			})
			sh.Report(c, err)
		},
	}

	// RecvCmd delivers a line from the verifier.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "LINE",
		Func: func(c *ishell.Context) {
			sh.Report(c, sh.BenchFrom(c).Recv(strings.Join(c.Args, " ")))
		},
	}

	// TickCmd advances the tick counter.
	TickCmd = ishell.Cmd{
		Name:    "tick",
		Aliases: []string{"t"},
		Help:    "[N]",
		Func: func(c *ishell.Context) {
			n := 1
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val < 0 {
					c.Err(fmt.Errorf("Invalid N: %q", c.Args[0]))
					return
				}
				n = val
			}
			b := sh.BenchFrom(c)
			err := b.Tick(n)
			now := b.Periph.Clock.Now()
			sh.Print(c, now, func() string { return fmt.Sprintf("tick %d", now) })
			sh.Report(c, err)
		},
	}

	// StateCmd prints current state.
	StateCmd = ishell.Cmd{
		Name: "state",
		Help: "",
		Func: func(c *ishell.Context) {
			b := sh.BenchFrom(c)
			state := b.Machine.State().String()
			sh.Print(c, state, func() string {
				return fmt.Sprintf("%s (tick %d, armed=%v)", state, b.Periph.Clock.Now(), b.Periph.Latch.Armed())
			})
		},
	}

	// DisplayCmd prints the display content.
	DisplayCmd = ishell.Cmd{
		Name:    "display",
		Aliases: []string{"lcd"},
		Help:    "",
		Func: func(c *ishell.Context) {
			lines := sh.BenchFrom(c).Display.Lines()
			sh.Print(c, lines, func() string { return strings.Join(lines, "\n") })
		},
	}

	// SentCmd prints lines transmitted since last call.
	SentCmd = ishell.Cmd{
		Name: "sent",
		Help: "",
		Func: func(c *ishell.Context) {
			lines := sh.BenchFrom(c).Sent()
			if lines == nil {
				lines = []string{}
			}
			sh.Print(c, lines, func() string { return strings.Join(lines, "\n") })
		},
	}

	// StatsCmd prints receiver counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: func(c *ishell.Context) {
			b := sh.BenchFrom(c)
			stats := b.Periph.Receiver.Stats()
			sh.Print(c, stats, func() string {
				return fmt.Sprintf("lines=%d dropped=%d overwritten=%d transitions=%d",
					stats.Lines, stats.Dropped, stats.Overwritten, len(b.Transitions))
			})
		},
	}
)

func init() {
	sh.AddCmds(
		&SensorCmd,
		&RecvCmd,
		&TickCmd,
		&StateCmd,
		&DisplayCmd,
		&SentCmd,
		&StatsCmd,
	)
}
