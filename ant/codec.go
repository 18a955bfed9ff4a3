// Package ant builds and reads the fixed-size onion-layered buffers that carry
// explorer and load ants between nodes.
package ant

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
)

// ErrEncodingOverflow is returned when an ant does not fit in the packet
// capacity.
var ErrEncodingOverflow = errors.New("ant does not fit in packet")

// ErrInvalidPath is returned when a load ant is requested over an empty path.
var ErrInvalidPath = errors.New("invalid ant path")

// ErrInvalidCapacity is returned when the packet capacity is below
// MinCapacity.
var ErrInvalidCapacity = errors.New("invalid packet capacity")

var byteOrder = binary.LittleEndian

// A Codec creates ants of a fixed capacity. Every ant it creates takes a new
// ID from the shared generator.
type Codec struct {
	capacity int
	ids      idgen.Generator
	clock    timing.TimeTeller
}

// NewCodec creates a Codec that writes packets of capacity bytes.
func NewCodec(
	capacity int,
	ids idgen.Generator,
	clock timing.TimeTeller,
) (*Codec, error) {
	if capacity < MinCapacity {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d",
			ErrInvalidCapacity, capacity, MinCapacity)
	}

	c := &Codec{
		capacity: capacity,
		ids:      ids,
		clock:    clock,
	}

	return c, nil
}

// Capacity returns the size of every packet the codec produces.
func (c *Codec) Capacity() int {
	return c.capacity
}

// EncodeLoad creates a load ant that travels along path. The first element of
// path is the node the packet must be handed to and the last one is the
// target.
func (c *Codec) EncodeLoad(
	path []Address,
	message []byte,
) (idgen.ID, []byte, error) {
	if len(path) == 0 {
		return 0, nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	required := LoadSize(len(path), len(message))
	if required > c.capacity {
		return 0, nil, fmt.Errorf("%w: load ant over %d hops needs %d bytes, capacity %d",
			ErrEncodingOverflow, len(path), required, c.capacity)
	}

	id := c.ids.Generate()
	buf := make([]byte, c.capacity)
	finalSize := loadFinalBaseSize + len(message)

	pos := 0
	for i, hop := range path[1:] {
		remaining := MediumHeaderSize*(len(path)-2-i) + finalSize
		writeMedium(buf[pos:], id, hop, uint32(remaining))
		pos += MediumHeaderSize
	}

	target := path[len(path)-1]
	writeFinal(buf[pos:], id, TypeLoad, SendTimeOf(c.clock.Now()), target)
	writeMessage(buf[pos:], message)

	return id, buf, nil
}

// EncodeExplorer creates an explorer ant addressed to target. The packet is
// handed to the chosen medium, which relays it to target.
func (c *Codec) EncodeExplorer(target Address) (idgen.ID, []byte, error) {
	required := ExplorerSize()
	if required > c.capacity {
		return 0, nil, fmt.Errorf("%w: explorer ant needs %d bytes, capacity %d",
			ErrEncodingOverflow, required, c.capacity)
	}

	id := c.ids.Generate()
	buf := make([]byte, c.capacity)

	writeMedium(buf, id, target, uint32(explorerFinalSize))
	writeFinal(buf[MediumHeaderSize:], id, TypeExplorer,
		SendTimeOf(c.clock.Now()), target)

	return id, buf, nil
}

// EncodeAnswer creates the single-layer packet a target sends back when it
// receives a load ant.
func (c *Codec) EncodeAnswer(
	sendTime uint64,
	target Address,
	antID idgen.ID,
	answer []byte,
) ([]byte, error) {
	required := loadFinalBaseSize + len(answer)
	if required > c.capacity {
		return nil, fmt.Errorf("%w: answer needs %d bytes, capacity %d",
			ErrEncodingOverflow, required, c.capacity)
	}

	buf := make([]byte, c.capacity)
	writeFinal(buf, antID, TypeLoad, sendTime, target)
	writeMessage(buf, answer)

	return buf, nil
}

// AdvanceLayer removes the outermost medium layer. The returned packet has the
// same size as the input, with the vacated tail filled with zeros. The input is
// not modified.
func AdvanceLayer(buf []byte) ([]byte, error) {
	if len(buf) < MediumHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, cannot strip a medium layer",
			ErrTruncated, len(buf))
	}

	out := make([]byte, len(buf))
	copy(out, buf[MediumHeaderSize:])

	return out, nil
}

// SendTimeOf converts a simulation time to the nanosecond timestamp carried in
// the final layer.
func SendTimeOf(t timing.VTimeInSec) uint64 {
	return uint64(math.Round(t * 1e9))
}

// TimeOfSendTime converts a nanosecond timestamp back to simulation time.
func TimeOfSendTime(ns uint64) timing.VTimeInSec {
	return timing.VTimeInSec(ns) / 1e9
}

func writeMedium(buf []byte, id idgen.ID, next Address, remaining uint32) {
	byteOrder.PutUint64(buf[offsetAntID:], id)
	copy(buf[offsetNodeType:offsetNextHop], TagMedium)
	binary.BigEndian.PutUint32(buf[offsetNextHop:], uint32(next))
	byteOrder.PutUint32(buf[offsetLayerSize:], remaining)
}

func writeFinal(
	buf []byte,
	id idgen.ID,
	antType Type,
	sendTime uint64,
	target Address,
) {
	byteOrder.PutUint64(buf[offsetAntID:], id)
	copy(buf[offsetNodeType:offsetAntType], TagFinal)
	byteOrder.PutUint32(buf[offsetAntType:], uint32(antType))
	byteOrder.PutUint64(buf[offsetSendTime:], sendTime)
	binary.BigEndian.PutUint32(buf[offsetTarget:], uint32(target))
}

func writeMessage(buf []byte, message []byte) {
	byteOrder.PutUint32(buf[offsetMsgLen:], uint32(len(message)))
	copy(buf[offsetMessage:], message)
}
