package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
)

// Message Kinds
const (
	TypeIDKindTelemetry uint32 = 0x00000000
	TypeIDKindEvent     uint32 = 0x80000000
)

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// ErrNotSerializable indicates the message is not serializable.
var ErrNotSerializable = errors.New("not serializable message")

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

// MessageTypes maps type IDs to prototypes used for decoding.
var MessageTypes = map[uint32]SerializableMessage{}

// Typed is the envelope carrying a message with its type.
type Typed struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Typed) Reset() { *m = Typed{} }

// String implements proto.Message.
func (m *Typed) String() string { return proto.CompactTextString(m) }

// TypedFrom creates a Typed from a serializable message.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// Encode serializes msg wrapped in a Typed envelope.
func Encode(msg fx.Message) ([]byte, error) {
	typed, err := TypedFrom(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(typed)
}

// Decode decodes the envelope into the actual message.
func (m *Typed) Decode() (fx.Message, error) {
	msgType, ok := MessageTypes[m.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: m.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(m.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// IsEvent determines if the message is an event rather than telemetry.
func (m *Typed) IsEvent() bool {
	return m.TypeId&TypeIDMaskKind == TypeIDKindEvent
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// DecodeMessage decodes bytes produced by Encode.
func DecodeMessage(data []byte) (fx.Message, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}
