package terminal

import "github.com/robotalks/gate.go/pkg/l0/tick"

// Protocol defines the line tokens exchanged with the verifier.
type Protocol struct {
	// Request lines sent when a check starts.
	Request []string
	// Ready is sent when the terminal returns to idle.
	Ready string
	// Ack answers a heartbeat.
	Ack string
	// Heartbeat is the liveness probe, accepted in any state.
	Heartbeat string
	// SuccessMarker prefixes a success result, the rest is the payload.
	SuccessMarker byte
	// Failure is the exact failure result.
	Failure string
}

// DefaultProtocol is the verifier protocol.
var DefaultProtocol = Protocol{
	Request:       []string{"NG", "CK"},
	Ready:         "RD",
	Ack:           "CF",
	Heartbeat:     "RUOK",
	SuccessMarker: 'T',
	Failure:       "F",
}

// Parse classifies an inbound line.
// The heartbeat takes precedence over the success marker.
func (p *Protocol) Parse(cmd string) (Event, string) {
	switch {
	case cmd == p.Heartbeat:
		return HeartbeatReceived, ""
	case len(cmd) > 0 && cmd[0] == p.SuccessMarker:
		return SuccessReceived, cmd[1:]
	case cmd == p.Failure:
		return FailureReceived, ""
	}
	return UnknownReceived, cmd
}

// Timing holds the state timeouts in ticks.
type Timing struct {
	CheckTimeout tick.Tick
	HoldTime     tick.Tick
}

// DefaultTiming is 15s to verify and 5s to show a result at 10ms ticks.
var DefaultTiming = Timing{
	CheckTimeout: 1500,
	HoldTime:     500,
}

// Display texts.
const (
	TextReady    = "System Ready"
	TextChecking = "Checking..."
	TextWelcome  = "Welcome"
	TextNotFound = "User not found"
)
