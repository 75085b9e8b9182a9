package gpio

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestLine(t *testing.T) {
	testCases := []struct {
		name     string
		level    gpio.Level
		inverted bool
		low      bool
	}{
		{"idle high", gpio.High, false, false},
		{"pulled low", gpio.Low, false, true},
		{"inverted high", gpio.High, true, true},
		{"inverted low", gpio.Low, true, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &gpiotest.Pin{N: "GPIO4", Num: 4}
			line, err := New(p, tc.inverted)
			require.NoError(t, err)
			// In applies the pull, drive the level afterwards.
			p.L = tc.level
			require.Equal(t, "GPIO4", line.Name())
			require.Equal(t, tc.low, line.IsLow())
			require.Equal(t, gpio.PullUp, p.P)
			require.NoError(t, line.Close())
		})
	}
}
