package aldl

import (
	"flag"
	"log"
	"os"
	"time"
)

// Config holds the calibration of the decoder. The defaults encode
// empirically measured hardware behavior and should only be changed
// against a scope trace of the actual line.
type Config struct {
	// BitPeriod is the duration of one bit, corrected for clock drift.
	BitPeriod time.Duration
	// PollInterval is the delay between two pin reads.
	PollInterval time.Duration

	// ZeroLowMin and ZeroLowMax bound the low time classified as Zero.
	ZeroLowMin time.Duration
	ZeroLowMax time.Duration
	// OneLowMin and OneLowMax bound the low time classified as One.
	OneLowMin time.Duration
	OneLowMax time.Duration

	// WindowSymbols is the number of bits captured per pass.
	WindowSymbols int
	// PreambleLen is the number of consecutive Ones marking a frame.
	PreambleLen int
	// FrameBytes is the number of bytes following the preamble.
	FrameBytes int

	// MaxFuelDelta is the largest plausible fuel counter advance.
	MaxFuelDelta uint8
	// MaxInterval is the largest time between two paired messages.
	MaxInterval time.Duration

	// DriftRaw is a fuel constant known to be a one-bit capture error,
	// replaced with DriftCorrected.
	DriftRaw       uint8
	DriftCorrected uint8

	// RefInjectorFlow is the max injector flow in lb/hr at RefFuelConstant.
	RefInjectorFlow float64
	RefFuelConstant float64

	// PassInterval is the pause between capture passes.
	PassInterval time.Duration
	// PassSlack is added to the window duration to bound a pass.
	PassSlack time.Duration
}

const (
	// BitsPerByte is the symbols per byte on the wire: start bit + 8 data bits.
	BitsPerByte = 9
	// MaxCounterTicks is the fuel counter advance representing 100% duty.
	MaxCounterTicks = 255.0
)

var defaultConfig = Config{
	BitPeriod:    6240 * time.Microsecond,
	PollInterval: 50 * time.Microsecond,

	ZeroLowMin: 100 * time.Microsecond,
	ZeroLowMax: 1500 * time.Microsecond,
	OneLowMin:  2500 * time.Microsecond,
	OneLowMax:  5500 * time.Microsecond,

	WindowSymbols: 200,
	PreambleLen:   9,
	FrameBytes:    5,

	MaxFuelDelta: 128,
	MaxInterval:  10 * time.Second,

	DriftRaw:       245,
	DriftCorrected: 122,

	RefInjectorFlow: 8,
	RefFuelConstant: 32,

	PassInterval: time.Second,
	PassSlack:    250 * time.Millisecond,
}

func init() {
	envDuration("ALDL_BIT_PERIOD", &defaultConfig.BitPeriod)
	envDuration("ALDL_PASS_INTERVAL", &defaultConfig.PassInterval)
}

func envDuration(name string, val *time.Duration) {
	if str := os.Getenv(name); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		*val = d
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.BitPeriod, "aldl-bit-period", defaultConfig.BitPeriod, "ALDL bit period.")
	flag.DurationVar(&defaultConfig.PollInterval, "aldl-poll", defaultConfig.PollInterval, "Pin polling interval.")
	flag.DurationVar(&defaultConfig.ZeroLowMin, "aldl-zero-min", defaultConfig.ZeroLowMin, "Minimum low time of a 0 bit.")
	flag.DurationVar(&defaultConfig.ZeroLowMax, "aldl-zero-max", defaultConfig.ZeroLowMax, "Maximum low time of a 0 bit.")
	flag.DurationVar(&defaultConfig.OneLowMin, "aldl-one-min", defaultConfig.OneLowMin, "Minimum low time of a 1 bit.")
	flag.DurationVar(&defaultConfig.OneLowMax, "aldl-one-max", defaultConfig.OneLowMax, "Maximum low time of a 1 bit.")
	flag.IntVar(&defaultConfig.WindowSymbols, "aldl-window", defaultConfig.WindowSymbols, "Bits captured per pass.")
	flag.DurationVar(&defaultConfig.MaxInterval, "aldl-max-interval", defaultConfig.MaxInterval, "Max time between paired messages.")
	flag.Float64Var(&defaultConfig.RefInjectorFlow, "aldl-injector-flow", defaultConfig.RefInjectorFlow, "Reference injector flow in lb/hr.")
	flag.DurationVar(&defaultConfig.PassInterval, "aldl-pass-interval", defaultConfig.PassInterval, "Pause between capture passes.")
	flag.DurationVar(&defaultConfig.PassSlack, "aldl-pass-slack", defaultConfig.PassSlack, "Extra time allowed for a capture pass.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// FrameSpan is the number of symbols from the preamble to the last data bit.
func (c *Config) FrameSpan() int {
	return c.PreambleLen + c.FrameBytes*BitsPerByte
}

// WindowDuration is the nominal duration of one capture window.
func (c *Config) WindowDuration() time.Duration {
	return time.Duration(c.WindowSymbols) * c.BitPeriod
}

// PassTimeout bounds one capture pass.
func (c *Config) PassTimeout() time.Duration {
	return c.WindowDuration() + c.PassSlack
}

// Classify maps the low time measured in one bit period to a symbol.
// Both ranges are inclusive; the gap between them is a dead zone.
func (c *Config) Classify(low time.Duration) Symbol {
	switch {
	case low >= c.ZeroLowMin && low <= c.ZeroLowMax:
		return Zero
	case low >= c.OneLowMin && low <= c.OneLowMax:
		return One
	default:
		return Ambiguous
	}
}

// Validate checks the tunables are consistent.
func (c *Config) Validate() error {
	switch {
	case c.BitPeriod <= 0:
		return &ConfigError{Field: "BitPeriod", Reason: "must be positive"}
	case c.PollInterval <= 0 || c.PollInterval >= c.BitPeriod:
		return &ConfigError{Field: "PollInterval", Reason: "must be positive and shorter than BitPeriod"}
	case c.ZeroLowMin < 0 || c.ZeroLowMin > c.ZeroLowMax:
		return &ConfigError{Field: "ZeroLowMin", Reason: "must be within [0, ZeroLowMax]"}
	case c.OneLowMin <= c.ZeroLowMax:
		return &ConfigError{Field: "OneLowMin", Reason: "must be above ZeroLowMax"}
	case c.OneLowMax < c.OneLowMin || c.OneLowMax > c.BitPeriod:
		return &ConfigError{Field: "OneLowMax", Reason: "must be within [OneLowMin, BitPeriod]"}
	case c.PreambleLen <= 0:
		return &ConfigError{Field: "PreambleLen", Reason: "must be positive"}
	case c.FrameBytes < 5:
		return &ConfigError{Field: "FrameBytes", Reason: "must hold at least 5 bytes"}
	case c.WindowSymbols < c.FrameSpan():
		return &ConfigError{Field: "WindowSymbols", Reason: "must hold a full frame"}
	case c.MaxInterval <= 0:
		return &ConfigError{Field: "MaxInterval", Reason: "must be positive"}
	case c.RefFuelConstant <= 0:
		return &ConfigError{Field: "RefFuelConstant", Reason: "must be positive"}
	case c.PassInterval < 0 || c.PassSlack < 0:
		return &ConfigError{Field: "PassInterval", Reason: "must not be negative"}
	}
	return nil
}
