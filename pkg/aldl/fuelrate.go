package aldl

import "fmt"

// Sample is a fuel consumption reading.
type Sample struct {
	// Timestamp is the CapturedAt of the later message.
	Timestamp int64
	LbPerHour float64
}

// String implements fmt.Stringer.
func (s Sample) String() string {
	return fmt.Sprintf("@%dms %.4f lb/hr", s.Timestamp, s.LbPerHour)
}

// FuelDelta is the wraparound-aware fuel counter advance.
func FuelDelta(last, cur Message) uint8 {
	return cur.FuelCounter - last.FuelCounter
}

// MaxInjectorFlow scales the reference injector flow by the fuel constant.
func (c *Config) MaxInjectorFlow(fuelConstant byte) float64 {
	return c.RefInjectorFlow * (float64(fuelConstant) / c.RefFuelConstant)
}

// FuelRate derives the consumption between two adjacent messages.
// The returned error only explains why no sample was produced.
func (c *Config) FuelRate(last, cur Message) (Sample, error) {
	delta := FuelDelta(last, cur)
	if delta > c.MaxFuelDelta {
		return Sample{}, fmt.Errorf("%w: %d ticks", ErrImplausibleDelta, delta)
	}
	dt := float64(cur.CapturedAt-last.CapturedAt) / 1000
	if dt <= 0 || dt >= c.MaxInterval.Seconds() {
		return Sample{}, fmt.Errorf("%w: %.3fs", ErrStaleInterval, dt)
	}
	unitsRate := float64(delta) / dt
	if unitsRate <= 0 {
		return Sample{}, ErrNoFlow
	}
	duty := unitsRate / MaxCounterTicks
	return Sample{
		Timestamp: cur.CapturedAt,
		LbPerHour: c.MaxInjectorFlow(cur.FuelConstant) * duty,
	}, nil
}
