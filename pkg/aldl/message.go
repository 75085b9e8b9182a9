package aldl

import "fmt"

// Message is a decoded ALDL frame.
type Message struct {
	// CapturedAt is the start of the capture pass in milliseconds on the
	// scheduler clock.
	CapturedAt int64

	Status          byte
	Cylinders       byte
	FuelCounter     byte
	DistanceCounter byte
	// FuelConstant is the injector scale after drift correction.
	FuelConstant byte
}

// Status bits.
const (
	StatusOverdrive  byte = 0x01
	StatusShiftLight byte = 0x80
)

// Overdrive reports whether the overdrive flag is set.
func (m Message) Overdrive() bool {
	return m.Status&StatusOverdrive != 0
}

// ShiftLight reports whether the shift light flag is set.
func (m Message) ShiftLight() bool {
	return m.Status&StatusShiftLight != 0
}

// Bytes returns the fields in wire order.
func (m Message) Bytes() []byte {
	return []byte{m.Status, m.Cylinders, m.FuelCounter, m.DistanceCounter, m.FuelConstant}
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("@%dms status=%02x cyl=%02x fuel=%02x dist=%02x const=%02x",
		m.CapturedAt, m.Status, m.Cylinders, m.FuelCounter, m.DistanceCounter, m.FuelConstant)
}

// Decode maps frame bytes to message fields and corrects the known
// drift of the fuel constant.
func (c *Config) Decode(frame Frame, capturedAt int64) Message {
	msg := Message{
		CapturedAt:      capturedAt,
		Status:          frame.Bytes[0],
		Cylinders:       frame.Bytes[1],
		FuelCounter:     frame.Bytes[2],
		DistanceCounter: frame.Bytes[3],
		FuelConstant:    c.CorrectFuelConstant(frame.Bytes[4]),
	}
	return msg
}

// CorrectFuelConstant applies the drift correction rule.
func (c *Config) CorrectFuelConstant(raw byte) byte {
	if raw == c.DriftRaw {
		return c.DriftCorrected
	}
	return raw
}
