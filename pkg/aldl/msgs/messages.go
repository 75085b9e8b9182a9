package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/aldl.go/pkg/aldl"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// FuelRate is a fuel consumption sample.
type FuelRate struct {
	Timestamp int64   `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	LbPerHour float64 `protobuf:"fixed64,2,opt,name=lb_per_hour,json=lbPerHour,proto3" json:"lb_per_hour,omitempty"`
}

// NewMessage implements Message.
func (m *FuelRate) NewMessage() fx.Message { return &FuelRate{} }

// TypeID implements SerializableMessage.
func (m *FuelRate) TypeID() uint32 { return FuelRateTypeID }

// Serializable implements SerializableMessage.
func (m *FuelRate) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *FuelRate) ProtoMessage() {}

// Reset implements proto.Message.
func (m *FuelRate) Reset() { *m = FuelRate{} }

// String implements proto.Message.
func (m *FuelRate) String() string { return proto.CompactTextString(m) }

// Sample converts back to aldl.Sample.
func (m *FuelRate) Sample() aldl.Sample {
	return aldl.Sample{Timestamp: m.Timestamp, LbPerHour: m.LbPerHour}
}

// FuelRateFrom creates FuelRate from a sample.
func FuelRateFrom(s aldl.Sample) *FuelRate {
	return &FuelRate{Timestamp: s.Timestamp, LbPerHour: s.LbPerHour}
}

// ECUData is a decoded ALDL message.
type ECUData struct {
	CapturedAt      int64  `protobuf:"varint,1,opt,name=captured_at,json=capturedAt,proto3" json:"captured_at,omitempty"`
	Status          uint32 `protobuf:"varint,2,opt,name=status,proto3" json:"status,omitempty"`
	Cylinders       uint32 `protobuf:"varint,3,opt,name=cylinders,proto3" json:"cylinders,omitempty"`
	FuelCounter     uint32 `protobuf:"varint,4,opt,name=fuel_counter,json=fuelCounter,proto3" json:"fuel_counter,omitempty"`
	DistanceCounter uint32 `protobuf:"varint,5,opt,name=distance_counter,json=distanceCounter,proto3" json:"distance_counter,omitempty"`
	FuelConstant    uint32 `protobuf:"varint,6,opt,name=fuel_constant,json=fuelConstant,proto3" json:"fuel_constant,omitempty"`
	Overdrive       bool   `protobuf:"varint,7,opt,name=overdrive,proto3" json:"overdrive,omitempty"`
	ShiftLight      bool   `protobuf:"varint,8,opt,name=shift_light,json=shiftLight,proto3" json:"shift_light,omitempty"`
}

// NewMessage implements Message.
func (m *ECUData) NewMessage() fx.Message { return &ECUData{} }

// TypeID implements SerializableMessage.
func (m *ECUData) TypeID() uint32 { return ECUDataTypeID }

// Serializable implements SerializableMessage.
func (m *ECUData) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ECUData) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ECUData) Reset() { *m = ECUData{} }

// String implements proto.Message.
func (m *ECUData) String() string { return proto.CompactTextString(m) }

// Message converts back to aldl.Message.
func (m *ECUData) Message() aldl.Message {
	return aldl.Message{
		CapturedAt:      m.CapturedAt,
		Status:          byte(m.Status),
		Cylinders:       byte(m.Cylinders),
		FuelCounter:     byte(m.FuelCounter),
		DistanceCounter: byte(m.DistanceCounter),
		FuelConstant:    byte(m.FuelConstant),
	}
}

// ECUDataFrom creates ECUData from a decoded message.
func ECUDataFrom(msg aldl.Message) *ECUData {
	return &ECUData{
		CapturedAt:      msg.CapturedAt,
		Status:          uint32(msg.Status),
		Cylinders:       uint32(msg.Cylinders),
		FuelCounter:     uint32(msg.FuelCounter),
		DistanceCounter: uint32(msg.DistanceCounter),
		FuelConstant:    uint32(msg.FuelConstant),
		Overdrive:       msg.Overdrive(),
		ShiftLight:      msg.ShiftLight(),
	}
}

// Heartbeat is an event periodically reporting decoder health.
type Heartbeat struct {
	Uptime     int64   `protobuf:"varint,1,opt,name=uptime,proto3" json:"uptime,omitempty"`
	State      string  `protobuf:"bytes,2,opt,name=state,proto3" json:"state,omitempty"`
	Passes     uint64  `protobuf:"varint,3,opt,name=passes,proto3" json:"passes,omitempty"`
	Decoded    uint64  `protobuf:"varint,4,opt,name=decoded,proto3" json:"decoded,omitempty"`
	Samples    uint64  `protobuf:"varint,5,opt,name=samples,proto3" json:"samples,omitempty"`
	Timeouts   uint64  `protobuf:"varint,6,opt,name=timeouts,proto3" json:"timeouts,omitempty"`
	Rejected   uint64  `protobuf:"varint,7,opt,name=rejected,proto3" json:"rejected,omitempty"`
	FuelUsedLb float64 `protobuf:"fixed64,8,opt,name=fuel_used_lb,json=fuelUsedLb,proto3" json:"fuel_used_lb,omitempty"`
}

// NewMessage implements Message.
func (m *Heartbeat) NewMessage() fx.Message { return &Heartbeat{} }

// TypeID implements SerializableMessage.
func (m *Heartbeat) TypeID() uint32 { return HeartbeatTypeID }

// Serializable implements SerializableMessage.
func (m *Heartbeat) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *Heartbeat) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Heartbeat) Reset() { *m = Heartbeat{} }

// String implements proto.Message.
func (m *Heartbeat) String() string { return proto.CompactTextString(m) }

// HeartbeatFrom summarizes scheduler state.
func HeartbeatFrom(uptimeMs int64, state aldl.State, stats aldl.Stats) *Heartbeat {
	return &Heartbeat{
		Uptime:   uptimeMs,
		State:    state.String(),
		Passes:   stats.Passes,
		Decoded:  stats.Decoded,
		Samples:  stats.Samples,
		Timeouts: stats.Timeouts,
		Rejected: stats.NoSync + stats.Invalid + stats.Implausible + stats.Stale,
	}
}

// TypeID Groups
const (
	GroupALDL uint32 = 0x00010000
)

// TypeIDs
const (
	FuelRateTypeID  uint32 = GroupALDL | TypeIDKindTelemetry | 0x0001
	ECUDataTypeID   uint32 = GroupALDL | TypeIDKindTelemetry | 0x0002
	HeartbeatTypeID uint32 = GroupALDL | TypeIDKindEvent | 0x0003
)

func init() {
	MessageTypes[FuelRateTypeID] = (*FuelRate)(nil)
	MessageTypes[ECUDataTypeID] = (*ECUData)(nil)
	MessageTypes[HeartbeatTypeID] = (*Heartbeat)(nil)
}
