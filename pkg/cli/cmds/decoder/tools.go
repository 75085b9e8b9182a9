// Package decoder provides shell commands exercising the decoder offline.
package decoder

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/sim"
)

// Decoded is the result of decoding a symbol string.
type Decoded struct {
	Offset  int          `json:"offset"`
	Bytes   []byte       `json:"bytes"`
	Message aldl.Message `json:"message"`
}

// DecodeSymbols finds and decodes a frame in a symbol string like
// "111111111 0 00000001 ...".
func DecodeSymbols(conf *aldl.Config, str string) (*Decoded, error) {
	window, err := aldl.ParseSymbols(str)
	if err != nil {
		return nil, err
	}
	frame, err := conf.FindFrame(window)
	if err != nil {
		return nil, err
	}
	return &Decoded{
		Offset:  frame.Offset,
		Bytes:   frame.Bytes,
		Message: conf.Decode(frame, 0),
	}, nil
}

// ParseBytes parses hex bytes, with or without 0x.
func ParseBytes(args []string) ([]byte, error) {
	data := make([]byte, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q", arg)
		}
		data = append(data, byte(v))
	}
	return data, nil
}

// EncodeBytes renders bytes as a frame of symbols.
func EncodeBytes(conf *aldl.Config, args []string) ([]aldl.Symbol, error) {
	data, err := ParseBytes(args)
	if err != nil {
		return nil, err
	}
	if len(data) != conf.FrameBytes {
		return nil, fmt.Errorf("%d bytes expected, got %d", conf.FrameBytes, len(data))
	}
	return conf.EncodeFrame(data), nil
}

// Rate computes the fuel rate between two fuel counter readings
// elapsed apart, using the given fuel constant.
func Rate(conf *aldl.Config, last, cur byte, elapsed time.Duration, constant byte) (aldl.Sample, error) {
	prev := aldl.Message{FuelCounter: last, FuelConstant: conf.CorrectFuelConstant(constant)}
	next := aldl.Message{
		CapturedAt:   elapsed.Milliseconds(),
		FuelCounter:  cur,
		FuelConstant: conf.CorrectFuelConstant(constant),
	}
	sched := aldl.NewScheduler(conf, nil, nil, nil)
	sched.Accept(prev)
	sample, err := sched.Accept(next)
	if err != nil {
		return aldl.Sample{}, err
	}
	return *sample, nil
}

// SampleCollector collects samples until enough are received.
type SampleCollector struct {
	Want   int
	Cancel func()

	lock    sync.Mutex
	samples []aldl.Sample
}

// EmitSample implements aldl.Sink.
func (c *SampleCollector) EmitSample(s aldl.Sample) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.samples = append(c.samples, s)
	if len(c.samples) >= c.Want && c.Cancel != nil {
		c.Cancel()
	}
}

// Samples returns the samples collected.
func (c *SampleCollector) Samples() []aldl.Sample {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]aldl.Sample(nil), c.samples...)
}

// Simulate decodes n samples from a simulated ECU on a virtual clock.
func Simulate(ctx context.Context, conf *aldl.Config, ecuConf sim.ECUConfig, n int) ([]aldl.Sample, aldl.Stats) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sink := &SampleCollector{Want: n, Cancel: cancel}
	sched := sim.Drive(ctx, conf, ecuConf, sink)
	return sink.Samples(), sched.Stats()
}
