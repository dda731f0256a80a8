// Package packet defines the fixed 16 byte datagram exchanged with the actuator controller.
//
// Layout, little-endian, identical in both directions:
//
//	int32 left_angle | int32 right_angle | int32 message_type | float32 timestamp_or_reading
//
// For MessageVoltage the float field carries a battery voltage reading instead of a timestamp.
package packet

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Size is the length of every packet on the wire.
const Size = 16

var (
	// ErrShortPacket is returned when a datagram is shorter than Size.
	ErrShortPacket = errors.New("packet too short")
	// ErrUnknownMessageType is returned for a message type outside 0 through 4.
	ErrUnknownMessageType = errors.New("unknown message type")
)

// MessageType says which hands were forced this tick, or marks a voltage probe.
type MessageType int32

// Known message types.
const (
	MessageNoneForced MessageType = iota
	MessageLeftForced
	MessageRightForced
	MessageBothForced
	MessageVoltage
)

// ForcedMessageType builds the composite control message type from the per-hand forced flags.
func ForcedMessageType(leftForced, rightForced bool) MessageType {
	switch {
	case leftForced && rightForced:
		return MessageBothForced
	case leftForced:
		return MessageLeftForced
	case rightForced:
		return MessageRightForced
	default:
		return MessageNoneForced
	}
}

// IsControl reports whether the type is one of the four control types.
func (mt MessageType) IsControl() bool {
	return mt >= MessageNoneForced && mt <= MessageBothForced
}

// LeftForced reports whether the left hand's flag is set.
func (mt MessageType) LeftForced() bool {
	return mt == MessageLeftForced || mt == MessageBothForced
}

// RightForced reports whether the right hand's flag is set.
func (mt MessageType) RightForced() bool {
	return mt == MessageRightForced || mt == MessageBothForced
}

func (mt MessageType) String() string {
	switch mt {
	case MessageNoneForced:
		return "none_forced"
	case MessageLeftForced:
		return "left_forced"
	case MessageRightForced:
		return "right_forced"
	case MessageBothForced:
		return "both_forced"
	case MessageVoltage:
		return "voltage"
	}
	return fmt.Sprintf("unknown(%d)", int32(mt))
}

// A Packet is one decoded datagram.
type Packet struct {
	LeftAngle   int32
	RightAngle  int32
	MessageType MessageType
	// Value is the timestamp in seconds, or a voltage reading for MessageVoltage replies.
	Value float32
}

// NewCommand builds a control or probe packet.
func NewCommand(left, right int32, mt MessageType, timestamp float32) Packet {
	return Packet{LeftAngle: left, RightAngle: right, MessageType: mt, Value: timestamp}
}

// Marshal encodes the packet into its wire form.
func (p Packet) Marshal() []byte {
	buf := make([]byte, Size)
	p.MarshalTo(buf)
	return buf
}

// MarshalTo encodes the packet into buf, which must hold at least Size bytes.
func (p Packet) MarshalTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.LeftAngle))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.RightAngle))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.MessageType))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(p.Value))
}

// Unmarshal decodes a datagram. Bytes past Size are ignored.
func Unmarshal(data []byte) (Packet, error) {
	if len(data) < Size {
		return Packet{}, errors.Wrapf(ErrShortPacket, "got %d bytes, want %d", len(data), Size)
	}
	p := Packet{
		LeftAngle:   int32(binary.LittleEndian.Uint32(data[0:4])),
		RightAngle:  int32(binary.LittleEndian.Uint32(data[4:8])),
		MessageType: MessageType(int32(binary.LittleEndian.Uint32(data[8:12]))),
		Value:       math.Float32frombits(binary.LittleEndian.Uint32(data[12:16])),
	}
	if !p.MessageType.IsControl() && p.MessageType != MessageVoltage {
		return p, errors.Wrapf(ErrUnknownMessageType, "%d", int32(p.MessageType))
	}
	return p, nil
}
