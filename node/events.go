package node

import (
	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
)

// SendKind tells what a send does to the routing table.
type SendKind int

// Kinds of sends.
const (
	// SendRequest adds an entry for the ant.
	SendRequest SendKind = iota

	// SendResponse removes the entry of the ant.
	SendResponse

	// SendPivot turns a request into a response and leaves the table alone.
	SendPivot
)

func (k SendKind) String() string {
	switch k {
	case SendRequest:
		return "Request"
	case SendResponse:
		return "Response"
	case SendPivot:
		return "Pivot"
	default:
		return "Unknown"
	}
}

// sendEvent hands a packet to the transport once the computation delay has
// passed.
type sendEvent struct {
	*timing.EventBase
	kind   SendKind
	antID  idgen.ID
	source ant.Address
	to     ant.Address
	packet []byte
}

type exploreEvent struct {
	*timing.EventBase
}

type scheduleLoadEvent struct {
	*timing.EventBase
}

type sendLoadEvent struct {
	*timing.EventBase
	target  ant.Address
	message []byte
}
