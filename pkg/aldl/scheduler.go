package aldl

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// State is the state of the capture scheduler.
type State int32

// States
const (
	StateIdle State = iota
	StateListening
	StateProcessing
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Stats counts pass outcomes.
type Stats struct {
	Passes      uint64 `json:"passes"`
	Timeouts    uint64 `json:"timeouts"`
	NoSync      uint64 `json:"no_sync"`
	Invalid     uint64 `json:"invalid"`
	Decoded     uint64 `json:"decoded"`
	Implausible uint64 `json:"implausible"`
	Stale       uint64 `json:"stale"`
	NoFlow      uint64 `json:"no_flow"`
	Samples     uint64 `json:"samples"`
}

// Scheduler drives capture passes and pairs decoded messages.
type Scheduler struct {
	Config *Config
	Source SymbolSource
	Clock  Clock
	Sink   Sink

	last  LastMessage
	state atomic.Int32
	epoch time.Time

	statsLock sync.Mutex
	stats     Stats

	window     []Symbol
	capturedAt int64
}

// NewScheduler creates a Scheduler. Timestamps are milliseconds since
// its creation on clock.
func NewScheduler(conf *Config, src SymbolSource, clock Clock, sink Sink) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		Config: conf,
		Source: src,
		Clock:  clock,
		Sink:   sink,
		epoch:  clock.Now(),
		window: make([]Symbol, 0, conf.WindowSymbols),
	}
}

// State returns the current state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
}

// LastMessage returns the retained message.
func (s *Scheduler) LastMessage() (Message, bool) {
	return s.last.Load()
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.statsLock.Lock()
	defer s.statsLock.Unlock()
	return s.stats
}

func (s *Scheduler) count(fn func(*Stats)) {
	s.statsLock.Lock()
	fn(&s.stats)
	s.statsLock.Unlock()
}

// Run implements Runnable. Pass failures are expected on this line and
// never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if _, err := s.Pass(ctx); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.pause(ctx); err != nil {
			return err
		}
	}
}

// pause lets PassInterval elapse on the clock between passes. Sleep is
// used rather than After so a virtual clock advances by itself while
// the sampler is idle.
func (s *Scheduler) pause(ctx context.Context) error {
	slept := make(chan struct{})
	go func() {
		s.Clock.Sleep(s.Config.PassInterval)
		close(slept)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-slept:
		return nil
	}
}

// Pass runs one capture pass. It returns the decoded message, or why
// none was decoded.
func (s *Scheduler) Pass(ctx context.Context) (*Message, error) {
	s.count(func(st *Stats) { st.Passes++ })
	window, err := s.capture(ctx)
	if err != nil {
		s.setState(StateIdle)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.count(func(st *Stats) { st.Timeouts++ })
		glog.V(2).Infof("capture timeout after %d symbols", len(window))
		return nil, err
	}
	s.setState(StateProcessing)
	defer s.setState(StateIdle)
	frame, err := s.Config.FindFrame(window)
	if err != nil {
		if errors.Is(err, ErrFrameInvalid) {
			s.count(func(st *Stats) { st.Invalid++ })
		} else {
			s.count(func(st *Stats) { st.NoSync++ })
		}
		glog.V(2).Infof("no message: %v", err)
		return nil, err
	}
	msg := s.Config.Decode(frame, s.capturedAt)
	s.count(func(st *Stats) { st.Decoded++ })
	glog.V(2).Infof("decoded %s", msg)
	s.Accept(msg)
	return &msg, nil
}

// Accept pairs msg with the retained message and adopts it as the new
// baseline, as a successful pass does. It returns the emitted sample,
// nil for the first message, or why no sample was produced.
func (s *Scheduler) Accept(msg Message) (*Sample, error) {
	last, ok := s.last.Swap(msg)
	if ms, isMsgSink := s.Sink.(MessageSink); isMsgSink {
		ms.EmitMessage(msg)
	}
	if !ok {
		return nil, nil
	}
	sample, err := s.Config.FuelRate(last, msg)
	if err != nil {
		s.count(func(st *Stats) {
			switch {
			case errors.Is(err, ErrImplausibleDelta):
				st.Implausible++
			case errors.Is(err, ErrStaleInterval):
				st.Stale++
			default:
				st.NoFlow++
			}
		})
		glog.V(2).Infof("no sample: %v", err)
		return nil, err
	}
	s.count(func(st *Stats) { st.Samples++ })
	if s.Sink != nil {
		s.Sink.EmitSample(sample)
	}
	return &sample, nil
}

func (s *Scheduler) capture(ctx context.Context) ([]Symbol, error) {
	s.setState(StateListening)
	s.capturedAt = s.Clock.Now().Sub(s.epoch).Milliseconds()
	q := s.Source.Symbols()
	if n := q.Drain(); n > 0 {
		glog.V(3).Infof("dropped %d stale symbols", n)
	}

	n := s.Config.WindowSymbols
	window := s.window[:0]
	deadline := s.Clock.Now().Add(s.Config.PassTimeout())
	var timeout <-chan time.Time
	s.Source.Arm(n)
	for len(window) < n {
		if sym, ok := q.Pop(); ok {
			window = append(window, sym)
			continue
		}
		// the timer starts on the first empty read, so a window that is
		// already queued never waits on the clock.
		if timeout == nil {
			timeout = s.Clock.After(deadline.Sub(s.Clock.Now()))
		}
		select {
		case <-q.Ready():
		case <-timeout:
			s.Source.Disarm()
			return window, ErrCaptureTimeout
		case <-ctx.Done():
			s.Source.Disarm()
			return window, ctx.Err()
		}
	}
	s.window = window
	return window, nil
}
