package aldl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// Pin is a digital input sampled at will.
type Pin interface {
	// IsLow reports whether the line is currently held low.
	IsLow() bool
}

// PinFunc is the func form of Pin.
type PinFunc func() bool

// IsLow implements Pin.
func (f PinFunc) IsLow() bool {
	return f()
}

// SymbolSource produces symbols on demand into a queue.
type SymbolSource interface {
	// Arm requests n symbols to be pushed into Symbols.
	Arm(n int)
	// Disarm cancels the outstanding request.
	Disarm()
	// Symbols is the queue symbols are pushed into.
	Symbols() *SymbolQueue
}

// Sampler measures the duty cycle of a Pin one bit period at a time.
type Sampler struct {
	Config *Config
	Pin    Pin
	Clock  Clock

	queue *SymbolQueue
	armed atomic.Int64
	gen   atomic.Uint64
	armCh chan struct{}
}

// NewSampler creates a Sampler with a queue sized for one window.
func NewSampler(conf *Config, pin Pin, clock Clock) *Sampler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Sampler{
		Config: conf,
		Pin:    pin,
		Clock:  clock,
		queue:  NewSymbolQueue(conf.WindowSymbols),
		armCh:  make(chan struct{}, 1),
	}
}

// SampleBit measures one bit period and classifies it.
// The time between two polls counts as low when the earlier poll saw
// the line low.
func (s *Sampler) SampleBit() Symbol {
	return s.Config.Classify(s.measureLow())
}

func (s *Sampler) measureLow() time.Duration {
	start := s.Clock.Now()
	end := start.Add(s.Config.BitPeriod)
	var low time.Duration
	lastLow, lastCheck := s.Pin.IsLow(), start
	for now := start; now.Before(end); now = s.Clock.Now() {
		isLow := s.Pin.IsLow()
		if lastLow {
			low += now.Sub(lastCheck)
		}
		lastLow, lastCheck = isLow, now
		s.Clock.Sleep(s.Config.PollInterval)
	}
	return low
}

// Symbols implements SymbolSource.
func (s *Sampler) Symbols() *SymbolQueue {
	return s.queue
}

// Arm implements SymbolSource.
func (s *Sampler) Arm(n int) {
	s.gen.Add(1)
	s.armed.Store(int64(n))
	select {
	case s.armCh <- struct{}{}:
	default:
	}
}

// Disarm implements SymbolSource.
func (s *Sampler) Disarm() {
	s.gen.Add(1)
	s.armed.Store(0)
}

func (s *Sampler) take() bool {
	for {
		n := s.armed.Load()
		if n <= 0 {
			return false
		}
		if s.armed.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Run implements Runnable. It samples only while armed.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.armCh:
		}
		for s.armed.Load() > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			gen := s.gen.Load()
			sym := s.SampleBit()
			// re-armed while sampling, the symbol straddles two requests.
			if s.gen.Load() != gen {
				continue
			}
			if !s.take() {
				break
			}
			if !s.queue.Push(sym) {
				glog.V(2).Infof("symbol queue overrun (%d)", s.queue.Overruns())
			}
		}
	}
}
