package telemetry

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
)

// TypeID layout of events, the same kind/group/id split as the
// command bus: the high bit marks an event.
const (
	TypeIDKindEvent uint32 = 0x80000000
	TypeIDGroupPad  uint32 = 0x00010000

	KeyEventTypeID     = TypeIDKindEvent | TypeIDGroupPad | 0x0001
	KnobEventTypeID    = TypeIDKindEvent | TypeIDGroupPad | 0x0002
	LayerEventTypeID   = TypeIDKindEvent | TypeIDGroupPad | 0x0003
	DisplayEventTypeID = TypeIDKindEvent | TypeIDGroupPad | 0x0004
)

// ErrNotEvent indicates the decoded message is not an event.
var ErrNotEvent = errors.New("not an event")

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// Event is a message mirrored to the broker.
type Event interface {
	proto.Message
	TypeID() uint32
	// Topic is the last topic segment the event is published under.
	Topic() string
}

// EventTypes maps type IDs to event constructors.
var EventTypes = map[uint32]func() Event{
	KeyEventTypeID:     func() Event { return &KeyEvent{} },
	KnobEventTypeID:    func() Event { return &KnobEvent{} },
	LayerEventTypeID:   func() Event { return &LayerEvent{} },
	DisplayEventTypeID: func() Event { return &DisplayEvent{} },
}

// Envelope wraps an encoded event with its type.
type Envelope struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Envelope) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// Encode wraps ev into an Envelope and marshals it.
func Encode(ev Event) ([]byte, error) {
	msg, err := proto.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(&Envelope{TypeId: ev.TypeID(), Message: msg})
}

// Decode reverses Encode.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.TypeId&TypeIDKindEvent == 0 {
		return nil, ErrNotEvent
	}
	newEvent, ok := EventTypes[env.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: env.TypeId}
	}
	ev := newEvent()
	if err := proto.Unmarshal(env.Message, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// KeyEvent reports a fired button.
type KeyEvent struct {
	Slot   int32  `protobuf:"varint,1,opt,name=slot,proto3" json:"slot,omitempty"`
	Kind   string `protobuf:"bytes,2,opt,name=kind,proto3" json:"kind,omitempty"`
	Detail string `protobuf:"bytes,3,opt,name=detail,proto3" json:"detail,omitempty"`
}

// TypeID implements Event.
func (m *KeyEvent) TypeID() uint32 { return KeyEventTypeID }

// Topic implements Event.
func (m *KeyEvent) Topic() string { return "key" }

// ProtoMessage implements proto.Message.
func (m *KeyEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *KeyEvent) Reset() { *m = KeyEvent{} }

// String implements proto.Message.
func (m *KeyEvent) String() string { return proto.CompactTextString(m) }

// KnobEvent reports a knob gesture.
type KnobEvent struct {
	Knob    string `protobuf:"bytes,1,opt,name=knob,proto3" json:"knob,omitempty"`
	Gesture string `protobuf:"bytes,2,opt,name=gesture,proto3" json:"gesture,omitempty"`
	Action  string `protobuf:"bytes,3,opt,name=action,proto3" json:"action,omitempty"`
}

// TypeID implements Event.
func (m *KnobEvent) TypeID() uint32 { return KnobEventTypeID }

// Topic implements Event.
func (m *KnobEvent) Topic() string { return "knob" }

// ProtoMessage implements proto.Message.
func (m *KnobEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *KnobEvent) Reset() { *m = KnobEvent{} }

// String implements proto.Message.
func (m *KnobEvent) String() string { return proto.CompactTextString(m) }

// LayerEvent reports the active layer after a switch.
type LayerEvent struct {
	Layer int32 `protobuf:"varint,1,opt,name=layer,proto3" json:"layer,omitempty"`
}

// TypeID implements Event.
func (m *LayerEvent) TypeID() uint32 { return LayerEventTypeID }

// Topic implements Event.
func (m *LayerEvent) Topic() string { return "layer" }

// ProtoMessage implements proto.Message.
func (m *LayerEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LayerEvent) Reset() { *m = LayerEvent{} }

// String implements proto.Message.
func (m *LayerEvent) String() string { return proto.CompactTextString(m) }

// DisplayEvent mirrors the text shown on the display.
type DisplayEvent struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

// TypeID implements Event.
func (m *DisplayEvent) TypeID() uint32 { return DisplayEventTypeID }

// Topic implements Event.
func (m *DisplayEvent) Topic() string { return "display" }

// ProtoMessage implements proto.Message.
func (m *DisplayEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DisplayEvent) Reset() { *m = DisplayEvent{} }

// String implements proto.Message.
func (m *DisplayEvent) String() string { return proto.CompactTextString(m) }
