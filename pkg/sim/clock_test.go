package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockTimers(t *testing.T) {
	testCases := []struct {
		name    string
		after   time.Duration
		advance []time.Duration
		fired   bool
	}{
		{name: "not reached", after: time.Second, advance: []time.Duration{999 * time.Millisecond}},
		{name: "reached", after: time.Second, advance: []time.Duration{time.Second}, fired: true},
		{name: "reached in steps", after: time.Second, advance: []time.Duration{400 * time.Millisecond, 700 * time.Millisecond}, fired: true},
		{name: "zero", fired: true},
		{name: "negative", after: -time.Second, fired: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clk := NewClock()
			start := clk.Now()
			ch := clk.After(tc.after)
			for _, d := range tc.advance {
				clk.Sleep(d)
			}
			select {
			case at := <-ch:
				require.True(t, tc.fired)
				if tc.after > 0 {
					require.Equal(t, start.Add(tc.after), at)
				}
				require.Zero(t, clk.Pending())
			default:
				require.False(t, tc.fired)
				require.Equal(t, 1, clk.Pending())
			}
		})
	}
}

func TestClockAfterDoesNotAdvance(t *testing.T) {
	clk := NewClock()
	start := clk.Now()
	clk.After(time.Hour)
	require.Equal(t, start, clk.Now())
}
