package ant

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sarchlab/arap/sim/idgen"
)

// ErrTruncated is returned when a field lies outside of the packet.
var ErrTruncated = errors.New("packet truncated")

// ErrUnknownTag is returned when the node-type tag of a layer is neither
// TagMedium nor TagFinal.
var ErrUnknownTag = errors.New("unknown node type tag")

func need(buf []byte, end int, field string) error {
	if end > len(buf) {
		return fmt.Errorf("%w: reading %s needs %d bytes, have %d",
			ErrTruncated, field, end, len(buf))
	}

	return nil
}

// ReadAntID returns the ID of the ant.
func ReadAntID(buf []byte) (idgen.ID, error) {
	if err := need(buf, offsetAntID+IDSize, "ant ID"); err != nil {
		return 0, err
	}

	return byteOrder.Uint64(buf[offsetAntID:]), nil
}

// ReadNodeType returns the role the outermost layer assigns to its receiver.
func ReadNodeType(buf []byte) (NodeType, error) {
	if err := need(buf, offsetNodeType+TagSize, "node type"); err != nil {
		return NodeTypeUnknown, err
	}

	switch tag := string(buf[offsetNodeType : offsetNodeType+TagSize]); tag {
	case TagMedium:
		return NodeTypeMedium, nil
	case TagFinal:
		return NodeTypeFinal, nil
	default:
		return NodeTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
}

// ReadNextHop returns the node a medium layer must be forwarded to.
func ReadNextHop(buf []byte) (Address, error) {
	if err := need(buf, offsetNextHop+AddressSize, "next hop"); err != nil {
		return 0, err
	}

	return Address(binary.BigEndian.Uint32(buf[offsetNextHop:])), nil
}

// ReadLayerSize returns the number of meaningful bytes after a medium layer.
func ReadLayerSize(buf []byte) (uint32, error) {
	if err := need(buf, offsetLayerSize+LayerSizeSize, "layer size"); err != nil {
		return 0, err
	}

	return byteOrder.Uint32(buf[offsetLayerSize:]), nil
}

// ReadType returns the ant type stored in a final layer.
func ReadType(buf []byte) (Type, error) {
	if err := need(buf, offsetAntType+TypeSize, "ant type"); err != nil {
		return 0, err
	}

	return Type(byteOrder.Uint32(buf[offsetAntType:])), nil
}

// ReadSendTime returns the creation timestamp, in nanoseconds, stored in a
// final layer.
func ReadSendTime(buf []byte) (uint64, error) {
	if err := need(buf, offsetSendTime+SendTimeSize, "send time"); err != nil {
		return 0, err
	}

	return byteOrder.Uint64(buf[offsetSendTime:]), nil
}

// ReadTarget returns the target stored in a final layer.
func ReadTarget(buf []byte) (Address, error) {
	if err := need(buf, offsetTarget+AddressSize, "target"); err != nil {
		return 0, err
	}

	return Address(binary.BigEndian.Uint32(buf[offsetTarget:])), nil
}

// ReadMessageLength returns the message length stored in a load final layer.
func ReadMessageLength(buf []byte) (uint32, error) {
	if err := need(buf, offsetMsgLen+MsgLenSize, "message length"); err != nil {
		return 0, err
	}

	return byteOrder.Uint32(buf[offsetMsgLen:]), nil
}

// ReadMessage returns a copy of the message carried by a load final layer.
func ReadMessage(buf []byte) ([]byte, error) {
	n, err := ReadMessageLength(buf)
	if err != nil {
		return nil, err
	}

	end := offsetMessage + int(n)
	if err := need(buf, end, "message"); err != nil {
		return nil, err
	}

	msg := make([]byte, n)
	copy(msg, buf[offsetMessage:end])

	return msg, nil
}

// Final is the decoded content of a final layer.
type Final struct {
	AntID    idgen.ID
	Type     Type
	SendTime uint64
	Target   Address
	Message  []byte
}

// DecodeFinal reads every field of a final layer. The message is only read
// for load ants.
func DecodeFinal(buf []byte) (Final, error) {
	var (
		f   Final
		err error
	)

	nodeType, err := ReadNodeType(buf)
	if err != nil {
		return f, err
	}

	if nodeType != NodeTypeFinal {
		return f, fmt.Errorf("%w: expected final layer, got %s",
			ErrUnknownTag, nodeType)
	}

	if f.AntID, err = ReadAntID(buf); err != nil {
		return f, err
	}

	if f.Type, err = ReadType(buf); err != nil {
		return f, err
	}

	if f.SendTime, err = ReadSendTime(buf); err != nil {
		return f, err
	}

	if f.Target, err = ReadTarget(buf); err != nil {
		return f, err
	}

	if f.Type == TypeLoad {
		if f.Message, err = ReadMessage(buf); err != nil {
			return f, err
		}
	}

	return f, nil
}
