package msgs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/aldl.go/pkg/aldl"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

type localMsg struct{}

func (m *localMsg) NewMessage() fx.Message { return &localMsg{} }

func TestEncodeDecode(t *testing.T) {
	decoded := aldl.Message{
		CapturedAt:      123456,
		Status:          0x81,
		Cylinders:       8,
		FuelCounter:     250,
		DistanceCounter: 3,
		FuelConstant:    122,
	}
	testCases := []struct {
		name  string
		msg   SerializableMessage
		event bool
	}{
		{name: "fuel rate", msg: FuelRateFrom(aldl.Sample{Timestamp: 2000, LbPerHour: 0.3137})},
		{name: "ecu data", msg: ECUDataFrom(decoded)},
		{name: "heartbeat", msg: HeartbeatFrom(5000, aldl.StateListening, aldl.Stats{Passes: 4, Decoded: 2, NoSync: 2}), event: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.msg)
			require.NoError(t, err)
			typed, err := DecodeTyped(data)
			require.NoError(t, err)
			require.Equal(t, tc.msg.TypeID(), typed.TypeId)
			require.Equal(t, tc.event, typed.IsEvent())
			msg, err := typed.Decode()
			require.NoError(t, err)
			if diff := cmp.Diff(tc.msg, msg); diff != "" {
				t.Errorf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestECUDataConversion(t *testing.T) {
	decoded := aldl.Message{CapturedAt: 10, Status: 0x01, Cylinders: 6, FuelCounter: 1, DistanceCounter: 2, FuelConstant: 32}
	data := ECUDataFrom(decoded)
	require.True(t, data.Overdrive)
	require.False(t, data.ShiftLight)
	require.Equal(t, decoded, data.Message())
	require.Equal(t, uint64(2), HeartbeatFrom(0, aldl.StateIdle, aldl.Stats{Stale: 1, Invalid: 1}).Rejected)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Encode(&localMsg{})
	require.Equal(t, ErrNotSerializable, err)

	typed := &Typed{TypeId: GroupALDL | 0xff}
	_, err = typed.Decode()
	require.IsType(t, &ErrUnknownType{}, err)
}
