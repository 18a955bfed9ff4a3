package node

import (
	"fmt"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
)

// Receive classifies an ant delivered by from and reacts to it. An ant the
// routing table knows is a response. Any other ant is a request, and the tag
// of its outermost layer tells whether the node relays it or is its target.
func (n *Node) Receive(from ant.Address, packet []byte) error {
	n.numReceived++

	id, err := ant.ReadAntID(packet)
	if err != nil {
		return fmt.Errorf("%w: node %s: %w", ErrProtocolInvariant, n.local, err)
	}

	state, entry, err := n.classify(id, from, packet)
	if err != nil {
		return err
	}

	n.log.Tracef("[%s] received ant %d from %s as %s",
		n.name, id, from, state)
	n.InvokeHook(hooking.HookCtx{
		Domain: n,
		Pos:    HookPosAntReceived,
		Item:   AntReceived{AntID: id, From: from, State: state},
	})

	switch state {
	case RequestMedium:
		return n.handleRequestMedium(id, from, packet)
	case RequestFinal:
		return n.handleRequestFinal(id, from, packet)
	case ResponseMedium:
		return n.handleResponseMedium(id, entry, packet)
	default:
		return n.handleResponseFinal(id, from, packet)
	}
}

func (n *Node) classify(
	id idgen.ID,
	from ant.Address,
	packet []byte,
) (State, RoutingEntry, error) {
	if entry, ok := n.routing[id]; ok {
		if entry.Target != from {
			return 0, entry, fmt.Errorf(
				"%w: node %s got the response of ant %d from %s, expected %s",
				ErrProtocolInvariant, n.local, id, from, entry.Target)
		}

		if entry.Source == n.local {
			return ResponseFinal, entry, nil
		}

		return ResponseMedium, entry, nil
	}

	nodeType, err := ant.ReadNodeType(packet)
	if err != nil {
		return 0, RoutingEntry{}, fmt.Errorf("%w: node %s, ant %d: %w",
			ErrProtocolInvariant, n.local, id, err)
	}

	if nodeType == ant.NodeTypeMedium {
		return RequestMedium, RoutingEntry{}, nil
	}

	return RequestFinal, RoutingEntry{}, nil
}

func (n *Node) handleRequestMedium(
	id idgen.ID,
	from ant.Address,
	packet []byte,
) error {
	next, err := ant.ReadNextHop(packet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocolInvariant, err)
	}

	inner, err := ant.AdvanceLayer(packet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocolInvariant, err)
	}

	n.scheduleSend(SendRequest, id, from, next, inner)

	return nil
}

func (n *Node) handleRequestFinal(
	id idgen.ID,
	from ant.Address,
	packet []byte,
) error {
	antType, err := ant.ReadType(packet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocolInvariant, err)
	}

	reply := packet

	switch antType {
	case ant.TypeExplorer:
	case ant.TypeLoad:
		final, err := ant.DecodeFinal(packet)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProtocolInvariant, err)
		}

		answer := fmt.Sprintf("end of trip for ant ID %d sent to node %s",
			id, final.Target)

		reply, err = n.codec.EncodeAnswer(
			final.SendTime, final.Target, id, []byte(answer))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: node %s, ant %d has unknown type %d",
			ErrProtocolInvariant, n.local, id, antType)
	}

	n.scheduleSend(SendPivot, id, from, from, reply)

	return nil
}

func (n *Node) handleResponseMedium(
	id idgen.ID,
	entry RoutingEntry,
	packet []byte,
) error {
	n.scheduleSend(SendResponse, id, entry.Source, entry.Source, packet)

	return nil
}

func (n *Node) handleResponseFinal(
	id idgen.ID,
	medium ant.Address,
	packet []byte,
) error {
	final, err := ant.DecodeFinal(packet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocolInvariant, err)
	}

	rtt := n.engine.Now() - ant.TimeOfSendTime(final.SendTime)

	switch final.Type {
	case ant.TypeExplorer:
		if err := n.requirePathManager(); err != nil {
			return err
		}

		err := n.pathMgr.HandleExplorerReturn(final.Target, medium, rtt*1000)
		if err != nil {
			return fmt.Errorf("%w: node %s: %w", ErrProtocolInvariant, n.local, err)
		}
	case ant.TypeLoad:
		if n.loadStats == nil {
			return fmt.Errorf("%w: node %s has no load statistics",
				ErrProtocolInvariant, n.local)
		}

		n.loadStats.Update(rtt, final.Target)
	default:
		return fmt.Errorf("%w: node %s, ant %d has unknown type %d",
			ErrProtocolInvariant, n.local, id, final.Type)
	}

	delete(n.routing, id)

	n.log.Tracef("[%s] %s ant %d back from %s through %s after %.6fs",
		n.name, final.Type, id, final.Target, medium, rtt)
	n.InvokeHook(hooking.HookCtx{
		Domain: n,
		Pos:    HookPosAntReturned,
		Item: AntReturned{
			AntID:  id,
			Type:   final.Type,
			Target: final.Target,
			Medium: medium,
			RTT:    rtt,
		},
	})

	return nil
}

func (n *Node) scheduleSend(
	kind SendKind,
	id idgen.ID,
	source, to ant.Address,
	packet []byte,
) {
	t := n.engine.Now() + n.computationDelay()

	n.engine.Schedule(&sendEvent{
		EventBase: timing.NewEventBase(t, n),
		kind:      kind,
		antID:     id,
		source:    source,
		to:        to,
		packet:    packet,
	})
}

func (n *Node) send(e *sendEvent) error {
	if e.kind == SendRequest {
		if _, dup := n.routing[e.antID]; dup {
			return fmt.Errorf("%w: node %s already routes ant %d",
				ErrProtocolInvariant, n.local, e.antID)
		}
	}

	if err := n.transport.Send(n.local, e.to, e.packet); err != nil {
		return fmt.Errorf("%w: node %s to %s, ant %d: %w",
			ErrTransportSend, n.local, e.to, e.antID, err)
	}

	switch e.kind {
	case SendRequest:
		n.routing[e.antID] = RoutingEntry{Source: e.source, Target: e.to}
	case SendResponse:
		delete(n.routing, e.antID)
	}

	n.numSent++

	n.log.Tracef("[%s] sent ant %d to %s (%s)", n.name, e.antID, e.to, e.kind)
	n.InvokeHook(hooking.HookCtx{
		Domain: n,
		Pos:    HookPosAntSent,
		Item:   AntSent{AntID: e.antID, To: e.to, Kind: e.kind},
	})

	return nil
}
