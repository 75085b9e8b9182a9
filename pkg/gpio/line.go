// Package gpio reads the ALDL line from a GPIO input through periph.io.
package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Line is a GPIO input implementing aldl.Pin.
type Line struct {
	pin gpio.PinIn
	// Inverted is set when the line passes through an inverting level
	// shifter, so a high input means the ALDL line is low.
	Inverted bool
}

// Open initializes the host drivers and opens the named pin, e.g. "GPIO4".
func Open(name string, inverted bool) (*Line, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return New(p, inverted)
}

// New wraps a pin and configures it as a pulled-up input, as the line
// idles high.
func New(p gpio.PinIn, inverted bool) (*Line, error) {
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("gpio %s input: %w", p.Name(), err)
	}
	return &Line{pin: p, Inverted: inverted}, nil
}

// Name returns the pin name.
func (l *Line) Name() string {
	return l.pin.Name()
}

// IsLow implements aldl.Pin.
func (l *Line) IsLow() bool {
	return (l.pin.Read() == gpio.Low) != l.Inverted
}

// Close implements io.Closer.
func (l *Line) Close() error {
	return l.pin.Halt()
}
