// Package stats summarizes fuel rate samples.
package stats

import (
	"time"

	"github.com/robotalks/aldl.go/pkg/aldl"
)

// LbPerGallon is the density of gasoline used to convert fuel mass.
const LbPerGallon = 6.073

// TripMeter accumulates fuel used by integrating the rate over the
// interval since the previous sample.
type TripMeter struct {
	// MaxInterval bounds the interval integrated, a longer gap means
	// the samples in between were lost and is not accounted.
	MaxInterval time.Duration

	FuelUsedLb float64
	Samples    int

	last    aldl.Sample
	hasLast bool
}

// NewTripMeter creates a TripMeter.
func NewTripMeter(maxInterval time.Duration) *TripMeter {
	return &TripMeter{MaxInterval: maxInterval}
}

// Add accounts a sample and returns the fuel added in lb.
func (m *TripMeter) Add(s aldl.Sample) float64 {
	var used float64
	if m.hasLast {
		dt := time.Duration(s.Timestamp-m.last.Timestamp) * time.Millisecond
		if dt > 0 && dt <= m.MaxInterval {
			used = s.LbPerHour * dt.Hours()
		}
	}
	m.last, m.hasLast = s, true
	m.Samples++
	m.FuelUsedLb += used
	return used
}

// FuelUsedGallons converts the accumulated fuel to gallons.
func (m *TripMeter) FuelUsedGallons() float64 {
	return m.FuelUsedLb / LbPerGallon
}

// Reset starts a new trip.
func (m *TripMeter) Reset() {
	*m = TripMeter{MaxInterval: m.MaxInterval}
}
