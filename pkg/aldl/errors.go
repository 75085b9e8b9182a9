package aldl

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSync indicates no preamble was found in a capture window.
	ErrNoSync = errors.New("no sync found")
	// ErrFrameInvalid indicates a preamble was found but the frame failed
	// validation.
	ErrFrameInvalid = errors.New("frame invalid")
	// ErrImplausibleDelta indicates the fuel counter advanced further than
	// a wraparound can explain.
	ErrImplausibleDelta = errors.New("implausible fuel counter delta")
	// ErrStaleInterval indicates the time between two messages is out of range.
	ErrStaleInterval = errors.New("stale or invalid interval")
	// ErrNoFlow indicates the fuel counter didn't advance.
	ErrNoFlow = errors.New("no fuel flow")
	// ErrCaptureTimeout indicates a pass didn't collect a full window in time.
	ErrCaptureTimeout = errors.New("capture timeout")
)

// FrameError describes why a synchronized candidate was rejected.
type FrameError struct {
	// Offset is the window index of the preamble.
	Offset int
	// Index is the offending symbol index in the window.
	Index int
	// Symbol is the offending symbol.
	Symbol Symbol
	// StartBit is true when the offending symbol is a start bit.
	StartBit bool
}

// Error implements error.
func (e *FrameError) Error() string {
	if e.StartBit {
		return fmt.Sprintf("frame at %d: start bit at %d is %s", e.Offset, e.Index, e.Symbol)
	}
	return fmt.Sprintf("frame at %d: ambiguous symbol at %d", e.Offset, e.Index)
}

// Unwrap makes errors.Is(err, ErrFrameInvalid) hold.
func (e *FrameError) Unwrap() error {
	return ErrFrameInvalid
}

// ConfigError reports an invalid tunable.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}
