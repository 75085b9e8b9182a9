package aldl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerPairsMessages(t *testing.T) {
	conf := NewConfig()
	clk := newFakeClock()
	src := newScriptedSource(conf,
		newWindow(conf).frame(3, 0x01, 0x08, 10, 1, 32).build(),
		newWindow(conf).frame(60, 0x80, 0x08, 30, 2, 32).build(),
	)
	sink := &recordingSink{}
	s := NewScheduler(conf, src, clk, sink)

	msg, err := s.Pass(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(0), msg.CapturedAt)
	require.Empty(t, sink.samples)

	clk.Sleep(2 * time.Second)
	msg, err = s.Pass(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2000), msg.CapturedAt)

	require.Len(t, sink.messages, 2)
	require.Len(t, sink.samples, 1)
	require.Equal(t, int64(2000), sink.samples[0].Timestamp)
	require.InDelta(t, 0.3137, sink.samples[0].LbPerHour, 1e-4)

	last, ok := s.LastMessage()
	require.True(t, ok)
	require.Equal(t, *msg, last)
	require.Equal(t, StateIdle, s.State())

	stats := s.Stats()
	require.Equal(t, uint64(2), stats.Passes)
	require.Equal(t, uint64(2), stats.Decoded)
	require.Equal(t, uint64(1), stats.Samples)
}

func TestSchedulerAdoptsBaselineOnRejection(t *testing.T) {
	conf := NewConfig()
	clk := newFakeClock()
	src := newScriptedSource(conf,
		newWindow(conf).frame(0, 0, 8, 0, 0, 32).build(),
		newWindow(conf).frame(0, 0, 8, 200, 0, 32).build(),
		newWindow(conf).frame(0, 0, 8, 220, 0, 32).build(),
	)
	sink := &recordingSink{}
	s := NewScheduler(conf, src, clk, sink)
	for range src.windows {
		_, err := s.Pass(context.Background())
		require.NoError(t, err)
		clk.Sleep(time.Second)
	}
	// 0 -> 200 is implausible, 200 -> 220 pairs against the adopted baseline.
	require.Len(t, sink.samples, 1)
	require.InDelta(t, 8.0*20/255, sink.samples[0].LbPerHour, 1e-9)
	require.Equal(t, uint64(1), s.Stats().Implausible)
}

func TestSchedulerNoMessageIsIdempotent(t *testing.T) {
	conf := NewConfig()
	clk := newFakeClock()
	windows := [][]Symbol{newWindow(conf).frame(0, 1, 8, 10, 0, 32).build()}
	for i := 0; i < 5; i++ {
		windows = append(windows, newWindow(conf).build())
	}
	src := newScriptedSource(conf, windows...)
	sink := &recordingSink{}
	s := NewScheduler(conf, src, clk, sink)

	first, err := s.Pass(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		clk.Sleep(time.Second)
		msg, err := s.Pass(context.Background())
		require.Equal(t, ErrNoSync, err)
		require.Nil(t, msg)
		last, ok := s.LastMessage()
		require.True(t, ok)
		require.Equal(t, *first, last)
	}
	require.Empty(t, sink.samples)
	require.Len(t, sink.messages, 1)
	require.Equal(t, uint64(5), s.Stats().NoSync)
}

func TestSchedulerInvalidFrame(t *testing.T) {
	conf := NewConfig()
	src := newScriptedSource(conf, newWindow(conf).frame(0, 1, 2, 3, 4, 5).set(20, Ambiguous).build())
	s := NewScheduler(conf, src, newFakeClock(), nil)
	_, err := s.Pass(context.Background())
	require.ErrorIs(t, err, ErrFrameInvalid)
	_, ok := s.LastMessage()
	require.False(t, ok)
	require.Equal(t, uint64(1), s.Stats().Invalid)
}

func TestSchedulerPassTimeout(t *testing.T) {
	conf := NewConfig()
	full := newWindow(conf).frame(3, 0x01, 0x08, 10, 1, 32).build()
	testCases := []struct {
		name    string
		windows [][]Symbol
		err     error
		elapsed time.Duration
		disarms int
	}{
		{name: "empty line", err: ErrCaptureTimeout, elapsed: conf.PassTimeout(), disarms: 1},
		{name: "partial window", windows: [][]Symbol{full[:150]}, err: ErrCaptureTimeout, elapsed: conf.PassTimeout(), disarms: 1},
		{name: "queued window", windows: [][]Symbol{full}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clk := newFakeClock()
			src := newScriptedSource(conf, tc.windows...)
			s := NewScheduler(conf, src, clk, nil)
			start := clk.Now()
			_, err := s.Pass(context.Background())
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				require.Equal(t, uint64(1), s.Stats().Timeouts)
			} else {
				require.NoError(t, err)
			}
			// the timeout runs on the scheduler clock, not the wall clock.
			require.Equal(t, tc.elapsed, clk.Now().Sub(start))
			require.Equal(t, tc.disarms, src.disarms)
			require.Equal(t, StateIdle, s.State())
		})
	}
}

func TestSchedulerPassCanceled(t *testing.T) {
	conf := NewConfig()
	src := newScriptedSource(conf)
	s := NewScheduler(conf, src, newFakeClock(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Pass(ctx)
	require.Equal(t, context.Canceled, err)
}

func TestSchedulerRun(t *testing.T) {
	conf := NewConfig()
	clk := newFakeClock()
	var windows [][]Symbol
	for i := 0; i < 4; i++ {
		windows = append(windows, newWindow(conf).frame(i*10, 0, 8, byte(i*10), 0, 32).build())
	}
	src := newScriptedSource(conf, windows...)
	ctx, cancel := context.WithCancel(context.Background())
	var samples []Sample
	s := NewScheduler(conf, src, clk, SinkFunc(func(sample Sample) {
		samples = append(samples, sample)
		if len(samples) == 3 {
			cancel()
		}
	}))
	require.Equal(t, context.Canceled, s.Run(ctx))
	require.Len(t, samples, 3)
	for _, sample := range samples {
		// 10 ticks per PassInterval.
		require.InDelta(t, 8.0*10/255, sample.LbPerHour, 1e-9)
	}
}

func TestSchedulerAccept(t *testing.T) {
	conf := NewConfig()
	base := Message{Cylinders: 8, FuelCounter: 10, FuelConstant: 32}
	testCases := []struct {
		name  string
		next  Message
		rate  float64
		err   error
		stats Stats
	}{
		{
			name:  "sample",
			next:  Message{CapturedAt: 2000, Cylinders: 8, FuelCounter: 30, FuelConstant: 32},
			rate:  0.3137,
			stats: Stats{Samples: 1},
		},
		{
			name:  "stale",
			next:  Message{CapturedAt: 12000, Cylinders: 8, FuelCounter: 30, FuelConstant: 32},
			err:   ErrStaleInterval,
			stats: Stats{Stale: 1},
		},
		{
			name:  "implausible",
			next:  Message{CapturedAt: 2000, Cylinders: 8, FuelCounter: 9, FuelConstant: 32},
			err:   ErrImplausibleDelta,
			stats: Stats{Implausible: 1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			s := NewScheduler(conf, nil, newFakeClock(), sink)
			sample, err := s.Accept(base)
			require.NoError(t, err)
			require.Nil(t, sample)

			sample, err = s.Accept(tc.next)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Nil(t, sample)
				require.Empty(t, sink.samples)
			} else {
				require.NoError(t, err)
				require.InDelta(t, tc.rate, sample.LbPerHour, 1e-4)
				require.Equal(t, []Sample{*sample}, sink.samples)
			}
			require.Equal(t, []Message{base, tc.next}, sink.messages)
			last, ok := s.LastMessage()
			require.True(t, ok)
			require.Equal(t, tc.next, last)
			require.Equal(t, tc.stats, s.Stats())
		})
	}
}
