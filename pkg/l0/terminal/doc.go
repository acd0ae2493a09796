// Package terminal implements the control core of the access terminal.
package terminal

// Three interrupt sources feed the core: the serial receiver (line.Receiver),
// the sensor edge (latch.Latch) and the periodic timer (tick.Counter). They
// only touch their own shared state under the interrupt mask. The Machine is
// the single authority over the terminal state: it runs in the main loop,
// copies shared state out inside short critical sections and performs all
// outbound side effects (display, serial transmit) outside of them.
//
// One main loop iteration (Machine.Step) evaluates, in this order and at most
// once each:
//
//   1. the sensor latch
//   2. a completed inbound line
//   3. the state timeout
//
// Every state has a timer enforced exit, so the terminal always returns to
// Idle without external help.
