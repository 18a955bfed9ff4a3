package network

import (
	"errors"
	"fmt"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/timing"
)

// ErrBadPacket is returned when a packet does not have the network packet
// size.
var ErrBadPacket = errors.New("bad packet")

// HookPosPacketSent marks a packet entering the network.
var HookPosPacketSent = &hooking.HookPos{Name: "PacketSent"}

// DeliveryEvent brings a packet to the node that owns To. It is handled by
// that node.
type DeliveryEvent struct {
	*timing.EventBase
	From   ant.Address
	To     ant.Address
	Packet []byte
}

// Transfer describes one packet crossing the network. It is the item of the
// hooks invoked by the Star.
type Transfer struct {
	From     ant.Address
	To       ant.Address
	SendTime timing.VTimeInSec
	Arrival  timing.VTimeInSec
}

type linkKey struct {
	from, to ant.Address
}

// A Star connects every node to a central hub. A packet from A to B crosses
// the link of A and then the link of B. Packets between the same pair of nodes
// arrive in the order they were sent.
type Star struct {
	hooking.HookableBase

	name       string
	engine     timing.EventScheduler
	dir        *Directory
	packetSize int
	delayDist  dist.Distribution

	linkDelay   []timing.VTimeInSec
	lastArrival map[linkKey]timing.VTimeInSec
	receivers   []timing.Handler
	numSent     uint64
}

// Name returns the name of the network.
func (s *Star) Name() string {
	return s.name
}

// Attach makes h the handler of the packets delivered to a.
func (s *Star) Attach(a ant.Address, h timing.Handler) error {
	i, ok := s.dir.IndexOf(a)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAddress, a)
	}

	s.receivers[i] = h

	return nil
}

// Send schedules the delivery of packet to to.
func (s *Star) Send(from, to ant.Address, packet []byte) error {
	src, ok := s.dir.IndexOf(from)
	if !ok {
		return fmt.Errorf("%w: sender %s", ErrUnknownAddress, from)
	}

	dst, ok := s.dir.IndexOf(to)
	if !ok || s.receivers[dst] == nil {
		return fmt.Errorf("%w: receiver %s", ErrUnknownAddress, to)
	}

	if len(packet) != s.packetSize {
		return fmt.Errorf("%w: %d bytes, network carries %d-byte packets",
			ErrBadPacket, len(packet), s.packetSize)
	}

	now := s.engine.Now()
	arrival := now + s.linkDelay[src] + s.linkDelay[dst]

	key := linkKey{from: from, to: to}
	if last, ok := s.lastArrival[key]; ok && arrival < last {
		arrival = last
	}

	s.lastArrival[key] = arrival
	s.numSent++

	evt := &DeliveryEvent{
		EventBase: timing.NewEventBase(arrival, s.receivers[dst]),
		From:      from,
		To:        to,
		Packet:    append([]byte(nil), packet...),
	}
	s.engine.Schedule(evt)

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosPacketSent,
		Item:   Transfer{From: from, To: to, SendTime: now, Arrival: arrival},
	})

	return nil
}

// ChangeDelays draws a new delay, in milliseconds, for every link.
func (s *Star) ChangeDelays() {
	for i := range s.linkDelay {
		s.linkDelay[i] = timing.Milliseconds(s.delayDist.Sample())
	}
}

// LinkDelay returns the current delay of the link of node i.
func (s *Star) LinkDelay(i int) timing.VTimeInSec {
	return s.linkDelay[i]
}

// NumSent returns the number of packets sent so far.
func (s *Star) NumSent() uint64 {
	return s.numSent
}
