// Package line frames a serial byte stream into line-feed terminated commands.
package line

import "github.com/robotalks/gate.go/pkg/l0/irq"

// DefaultCapacity is the receive buffer size including the terminator slot.
const DefaultCapacity = 32

const (
	cr byte = '\r'
	lf byte = '\n'
)

// Stats counts framing anomalies. They are never reported as faults.
type Stats struct {
	// Lines is the number of completed lines.
	Lines uint32
	// Dropped is the number of bytes discarded because the line was full.
	Dropped uint32
	// Overwritten is the number of completed lines replaced before Take.
	Overwritten uint32
}

// Receiver accumulates bytes into lines.
// HandleByte is called from interrupt context, Take and Reset from the
// main loop. All shared fields are guarded by the interrupt mask.
type Receiver struct {
	mask  *irq.Mask
	buf   []byte
	index int

	line  []byte
	ready bool
	stats Stats
}

// NewReceiver creates a Receiver holding at most capacity-1 bytes per line.
func NewReceiver(mask *irq.Mask, capacity int) *Receiver {
	if capacity < 2 {
		capacity = DefaultCapacity
	}
	return &Receiver{
		mask: mask,
		buf:  make([]byte, capacity-1),
		line: make([]byte, 0, capacity-1),
	}
}

// Capacity returns the buffer capacity including the terminator slot.
func (r *Receiver) Capacity() int {
	return len(r.buf) + 1
}

// HandleByte consumes one received byte and reports whether it completed a line.
func (r *Receiver) HandleByte(b byte) (completed bool) {
	r.mask.Disable()
	completed = r.handleByte(b)
	r.mask.Enable()
	return
}

func (r *Receiver) handleByte(b byte) bool {
	switch b {
	case cr:
		return false
	case lf:
		if r.ready {
			r.stats.Overwritten++
		}
		r.line = append(r.line[:0], r.buf[:r.index]...)
		r.index = 0
		r.ready = true
		r.stats.Lines++
		return true
	}
	if r.index < len(r.buf) {
		r.buf[r.index] = b
		r.index++
	} else {
		r.stats.Dropped++
	}
	return false
}

// Write implements io.Writer, each byte is handled as a separate interrupt.
func (r *Receiver) Write(p []byte) (int, error) {
	for _, b := range p {
		r.HandleByte(b)
	}
	return len(p), nil
}

// Ready reports whether a completed line is waiting.
func (r *Receiver) Ready() (ready bool) {
	r.mask.Do(func() { ready = r.ready })
	return
}

// Take copies the completed line out and clears the ready flag.
func (r *Receiver) Take() (cmd string, ok bool) {
	r.mask.Disable()
	if r.ready {
		cmd, ok = string(r.line), true
		r.ready = false
		r.line = r.line[:0]
	}
	r.mask.Enable()
	return
}

// Reset discards the partial line, the completed line and the ready flag.
func (r *Receiver) Reset() {
	r.mask.Disable()
	r.index = 0
	r.line = r.line[:0]
	r.ready = false
	r.mask.Enable()
}

// Stats returns a snapshot of the counters.
func (r *Receiver) Stats() (s Stats) {
	r.mask.Do(func() { s = r.stats })
	return
}
