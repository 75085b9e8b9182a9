package decoder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/sim"
)

func TestEncodeDecode(t *testing.T) {
	conf := aldl.NewConfig()
	syms, err := EncodeBytes(conf, strings.Fields("01 0x08 1e 42 F5"))
	require.NoError(t, err)
	require.Len(t, syms, conf.FrameSpan())

	res, err := DecodeSymbols(conf, "??0"+aldl.FormatSymbols(syms))
	require.NoError(t, err)
	require.Equal(t, 3, res.Offset)
	require.Equal(t, []byte{0x01, 0x08, 0x1e, 0x42, 0xf5}, res.Bytes)
	require.Equal(t, byte(122), res.Message.FuelConstant)
	require.True(t, res.Message.Overdrive())

	_, err = EncodeBytes(conf, []string{"01", "02"})
	require.Error(t, err)
	_, err = EncodeBytes(conf, []string{"zz", "0", "0", "0", "0"})
	require.Error(t, err)

	_, err = DecodeSymbols(conf, "0101")
	require.True(t, errors.Is(err, aldl.ErrNoSync))
	_, err = DecodeSymbols(conf, "01#")
	require.Error(t, err)
}

func TestRate(t *testing.T) {
	conf := aldl.NewConfig()
	sample, err := Rate(conf, 10, 30, 2*time.Second, 32)
	require.NoError(t, err)
	require.InDelta(t, 0.3137, sample.LbPerHour, 1e-4)
	require.Equal(t, int64(2000), sample.Timestamp)

	_, err = Rate(conf, 10, 30, 12*time.Second, 32)
	require.True(t, errors.Is(err, aldl.ErrStaleInterval))
	_, err = Rate(conf, 30, 10, 2*time.Second, 32)
	require.True(t, errors.Is(err, aldl.ErrImplausibleDelta))
}

func TestSimulate(t *testing.T) {
	ecuConf := *sim.NewECUConfig()
	ecuConf.FuelFlow = 1
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	samples, stats := Simulate(ctx, aldl.NewConfig(), ecuConf, 2)
	require.Len(t, samples, 2)
	require.Equal(t, uint64(2), stats.Samples)
	for _, s := range samples {
		require.InDelta(t, 1, s.LbPerHour, 0.03)
	}
}
