package aldl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	conf := NewConfig()
	syms := conf.EncodeFrame([]byte{0xA5, 0x00, 0xFF, 0x01, 0x80})
	require.Equal(t,
		"111111111"+"010100101"+"000000000"+"011111111"+"000000001"+"010000000",
		FormatSymbols(syms))
}

func TestFindFrameRoundTrip(t *testing.T) {
	conf := NewConfig()
	testCases := [][]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00},
		{0x81, 0x08, 0x1e, 0x42, 0x20},
		{0xff, 0xff, 0xff, 0xff, 0xff},
		{0x55, 0xaa, 0x55, 0xaa, 245},
	}
	for _, data := range testCases {
		for _, offset := range []int{0, 17, conf.WindowSymbols - conf.FrameSpan()} {
			t.Run(fmt.Sprintf("%x@%d", data, offset), func(t *testing.T) {
				frame, err := conf.FindFrame(newWindow(conf).frame(offset, data...).build())
				require.NoError(t, err)
				require.Equal(t, offset, frame.Offset)
				require.Equal(t, data, frame.Bytes)
			})
		}
	}
}

func TestFindFrameAmbiguousRejectsCandidate(t *testing.T) {
	conf := NewConfig()
	data := []byte{0x81, 0x08, 0x1e, 0x42, 0x20}
	for i := 0; i < conf.FrameSpan(); i++ {
		window := newWindow(conf).frame(10, data...).set(10+i, Ambiguous).build()
		_, err := conf.FindFrame(window)
		require.Error(t, err, "ambiguous at %d", i)
		if i < conf.PreambleLen {
			// the preamble is broken, nothing syncs.
			require.True(t, errors.Is(err, ErrNoSync) || errors.Is(err, ErrFrameInvalid))
		} else {
			require.True(t, errors.Is(err, ErrFrameInvalid), "ambiguous at %d: %v", i, err)
		}
	}
}

func TestFindFrameStartBit(t *testing.T) {
	conf := NewConfig()
	window := newWindow(conf).frame(0, 1, 2, 3, 4, 5).set(conf.PreambleLen+2*BitsPerByte, One).build()
	_, err := conf.FindFrame(window)
	require.True(t, errors.Is(err, ErrFrameInvalid))
	var fe *FrameError
	require.True(t, errors.As(err, &fe))
	require.True(t, fe.StartBit)
	require.Equal(t, conf.PreambleLen+2*BitsPerByte, fe.Index)
}

func TestFindFrameFirstMatch(t *testing.T) {
	conf := NewConfig()
	testCases := []struct {
		name   string
		window []Symbol
		offset int
		data   []byte
	}{
		{
			name:   "earliest wins",
			window: newWindow(conf).frame(5, 1, 2, 3, 4, 5).frame(80, 6, 7, 8, 9, 10).build(),
			offset: 5,
			data:   []byte{1, 2, 3, 4, 5},
		},
		{
			name:   "continue after rejected candidate",
			window: newWindow(conf).frame(5, 1, 2, 3, 4, 5).set(30, Ambiguous).frame(80, 6, 7, 8, 9, 10).build(),
			offset: 80,
			data:   []byte{6, 7, 8, 9, 10},
		},
		{
			name:   "long run of ones",
			window: newWindow(conf).frame(20, 1, 2, 3, 4, 5).set(18, One).set(19, One).build(),
			offset: 20,
			data:   []byte{1, 2, 3, 4, 5},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := conf.FindFrame(tc.window)
			require.NoError(t, err)
			require.Equal(t, tc.offset, frame.Offset)
			require.Equal(t, tc.data, frame.Bytes)
		})
	}
}

func TestFindFrameNoSync(t *testing.T) {
	conf := NewConfig()
	_, err := conf.FindFrame(newWindow(conf).build())
	require.Equal(t, ErrNoSync, err)

	// frame truncated by the end of the window.
	window := newWindow(conf).build()
	copy(window[conf.WindowSymbols-30:], conf.EncodeFrame([]byte{1, 2, 3, 4, 5}))
	_, err = conf.FindFrame(window)
	require.Equal(t, ErrNoSync, err)

	_, err = conf.FindFrame(nil)
	require.Equal(t, ErrNoSync, err)
}

func TestDecode(t *testing.T) {
	conf := NewConfig()
	testCases := []struct {
		name  string
		raw   byte
		fixed byte
	}{
		{"drift corrected", 245, 122},
		{"pass through", 200, 200},
		{"nominal", 32, 32},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := conf.Decode(Frame{Bytes: []byte{0x81, 0x08, 10, 20, tc.raw}}, 1234)
			require.Equal(t, Message{
				CapturedAt:      1234,
				Status:          0x81,
				Cylinders:       0x08,
				FuelCounter:     10,
				DistanceCounter: 20,
				FuelConstant:    tc.fixed,
			}, msg)
			require.True(t, msg.Overdrive())
			require.True(t, msg.ShiftLight())
		})
	}
}
