package sim

import (
	"flag"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/robotalks/aldl.go/pkg/aldl"
)

// ECUConfig describes the simulated engine controller.
type ECUConfig struct {
	// BitPeriod is the true bit period of the line (160 baud).
	BitPeriod time.Duration
	// OneLow and ZeroLow are how long the line is held low at the
	// start of a One or Zero bit.
	OneLow  time.Duration
	ZeroLow time.Duration
	// GapBits is the idle time between two frames in bits.
	GapBits int

	Status    byte
	Cylinders byte
	// FuelConstant is transmitted as is, 245 reproduces the drift error.
	FuelConstant byte

	// FuelFlow is the simulated consumption in lb/hr.
	FuelFlow float64
	// DistanceRate is distance counter ticks per second.
	DistanceRate float64
	// Noise is the probability of a bit being garbled.
	Noise float64
	Seed  int64
}

var defaultECUConfig = ECUConfig{
	BitPeriod:    6250 * time.Microsecond,
	OneLow:       4 * time.Millisecond,
	ZeroLow:      500 * time.Microsecond,
	GapBits:      18,
	Status:       0x01,
	Cylinders:    0x08,
	FuelConstant: 32,
	FuelFlow:     1.5,
	DistanceRate: 4,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultECUConfig.FuelFlow, "sim-flow", defaultECUConfig.FuelFlow, "Simulated fuel flow in lb/hr.")
	flag.Float64Var(&defaultECUConfig.Noise, "sim-noise", defaultECUConfig.Noise, "Probability of a garbled bit.")
	flag.IntVar(&defaultECUConfig.GapBits, "sim-gap", defaultECUConfig.GapBits, "Idle bits between frames.")
	flag.Int64Var(&defaultECUConfig.Seed, "sim-seed", defaultECUConfig.Seed, "Noise seed.")
}

// NewECUConfig creates an ECUConfig with defaults.
func NewECUConfig() *ECUConfig {
	conf := defaultECUConfig
	return &conf
}

// ECU simulates an engine controller repeatedly transmitting frames.
// It implements aldl.Pin, the line level being a function of the clock.
type ECU struct {
	Config  ECUConfig
	Decoder *aldl.Config
	Clock   aldl.Clock

	start time.Time

	lock      sync.Mutex
	cycle     int64
	frame     []aldl.Symbol
	noiseBit  int64
	noiseSym  aldl.Symbol
	noiseSeen bool
}

// NewECU creates an ECU starting transmission now on clock.
func NewECU(conf ECUConfig, decoder *aldl.Config, clock aldl.Clock) *ECU {
	return &ECU{
		Config:  conf,
		Decoder: decoder,
		Clock:   clock,
		start:   clock.Now(),
		cycle:   -1,
	}
}

// CycleBits is the length of a frame and the following gap.
func (e *ECU) CycleBits() int {
	return e.Decoder.FrameSpan() + e.Config.GapBits
}

// TicksPerSecond is the fuel counter rate matching FuelFlow.
func (e *ECU) TicksPerSecond() float64 {
	maxFlow := e.Decoder.MaxInjectorFlow(e.Decoder.CorrectFuelConstant(e.Config.FuelConstant))
	return e.Config.FuelFlow / maxFlow * aldl.MaxCounterTicks
}

// FrameAt returns the bytes transmitted by a frame starting at elapsed.
func (e *ECU) FrameAt(elapsed time.Duration) []byte {
	secs := elapsed.Seconds()
	fuel := uint64(math.Floor(e.TicksPerSecond() * secs))
	dist := uint64(math.Floor(e.Config.DistanceRate * secs))
	return []byte{
		e.Config.Status,
		e.Config.Cylinders,
		byte(fuel),
		byte(dist),
		e.Config.FuelConstant,
	}
}

// SymbolAt returns the symbol on the line at elapsed time.
// Idle bits are Ambiguous as the line stays high.
func (e *ECU) SymbolAt(elapsed time.Duration) aldl.Symbol {
	if elapsed < 0 {
		return aldl.Ambiguous
	}
	bit := int64(elapsed / e.Config.BitPeriod)
	cycleLen := int64(e.CycleBits())
	cycle, pos := bit/cycleLen, bit%cycleLen

	e.lock.Lock()
	defer e.lock.Unlock()
	if pos >= int64(e.Decoder.FrameSpan()) {
		return aldl.Ambiguous
	}
	if cycle != e.cycle {
		at := time.Duration(cycle*cycleLen) * e.Config.BitPeriod
		e.frame, e.cycle = e.Decoder.EncodeFrame(e.FrameAt(at)), cycle
	}
	sym := e.frame[pos]
	if e.Config.Noise > 0 {
		if !e.noiseSeen || e.noiseBit != bit {
			e.noiseBit, e.noiseSeen, e.noiseSym = bit, true, sym
			r := rand.New(rand.NewSource(e.Config.Seed ^ bit))
			if r.Float64() < e.Config.Noise {
				e.noiseSym = aldl.Ambiguous
			}
		}
		sym = e.noiseSym
	}
	return sym
}

// IsLow implements aldl.Pin.
func (e *ECU) IsLow() bool {
	elapsed := e.Clock.Now().Sub(e.start)
	if elapsed < 0 {
		return false
	}
	var low time.Duration
	switch e.SymbolAt(elapsed) {
	case aldl.One:
		low = e.Config.OneLow
	case aldl.Zero:
		low = e.Config.ZeroLow
	default:
		if e.Config.Noise > 0 && e.noiseGarbled(elapsed) {
			// garbled bits land in the dead zone.
			low = (e.Decoder.ZeroLowMax + e.Decoder.OneLowMin) / 2
		}
	}
	return elapsed%e.Config.BitPeriod < low
}

func (e *ECU) noiseGarbled(elapsed time.Duration) bool {
	bit := int64(elapsed / e.Config.BitPeriod)
	pos := bit % int64(e.CycleBits())
	return pos < int64(e.Decoder.FrameSpan())
}
