// Package serial opens the UART link to the verifier.
package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Defaults match the terminal firmware: 9600 8N1.
const (
	DefaultBaud        = 9600
	DefaultReadTimeout = 0
)

// Config defines the serial port options.
type Config struct {
	Device string
	Baud   int
	// ReadTimeout of zero blocks until a byte arrives.
	ReadTimeout time.Duration
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{Baud: DefaultBaud, ReadTimeout: DefaultReadTimeout}
}

// PortConfig converts to the serial driver configuration.
func (c *Config) PortConfig() *serial.Config {
	baud := c.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &serial.Config{
		Name:        c.Device,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: c.ReadTimeout,
	}
}

// Open opens the serial port.
func (c *Config) Open() (*serial.Port, error) {
	if c.Device == "" {
		return nil, fmt.Errorf("serial device not specified")
	}
	port, err := serial.OpenPort(c.PortConfig())
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", c.Device, err)
	}
	return port, nil
}
