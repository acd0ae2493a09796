// Package irq provides the interrupt mask shared by interrupt handlers and the
// main control loop.
package irq

// Handlers for the serial receiver, the sensor edge and the periodic timer all
// run with the mask held, the same way an ISR runs with interrupts disabled.
// The main loop takes the mask only to copy or reset shared state; it must
// never hold it across a blocking call such as a display write or a serial
// transmission.
