// Package node implements the protocol run by every node: it classifies the
// ants it receives through a transient routing table, peels or answers them,
// and feeds the round trips it measures back to its path manager.
package node

import (
	"errors"
	"fmt"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/network"
	"github.com/sarchlab/arap/pathmgr"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sarchlab/arap/stats"
	"github.com/sirupsen/logrus"
)

var (
	// ErrProtocolInvariant is returned when the traffic a node receives
	// contradicts its routing table, or when the node lacks a collaborator it
	// needs.
	ErrProtocolInvariant = errors.New("protocol invariant violated")

	// ErrTransportSend is returned when the transport refuses a packet.
	ErrTransportSend = errors.New("transport send failed")
)

// Transport carries packets between nodes.
type Transport interface {
	Send(from, to ant.Address, packet []byte) error
}

// Directory lists the nodes of the network.
type Directory interface {
	Addresses() []ant.Address
	Address(i int) (ant.Address, error)
}

// HookPosAntSent marks an ant leaving the node. The item is an AntSent.
var HookPosAntSent = &hooking.HookPos{Name: "AntSent"}

// HookPosAntReceived marks an ant arriving at the node. The item is an
// AntReceived.
var HookPosAntReceived = &hooking.HookPos{Name: "AntReceived"}

// HookPosAntReturned marks the end of a round trip. The item is an
// AntReturned.
var HookPosAntReturned = &hooking.HookPos{Name: "AntReturned"}

// HookPosLoadPath marks the creation of a load ant. The item is a LoadPath.
var HookPosLoadPath = &hooking.HookPos{Name: "LoadPath"}

// State is the role a node plays for a received ant.
type State int

// States of a received ant.
const (
	RequestMedium State = iota
	RequestFinal
	ResponseMedium
	ResponseFinal
)

func (s State) String() string {
	switch s {
	case RequestMedium:
		return "RequestMedium"
	case RequestFinal:
		return "RequestFinal"
	case ResponseMedium:
		return "ResponseMedium"
	case ResponseFinal:
		return "ResponseFinal"
	default:
		return "Unknown"
	}
}

// RoutingEntry remembers where a request came from and where it was sent, so
// that the response can retrace it.
type RoutingEntry struct {
	Source ant.Address
	Target ant.Address
}

// AntSent describes an ant handed to the transport.
type AntSent struct {
	AntID idgen.ID
	To    ant.Address
	Kind  SendKind
}

// AntReceived describes an ant delivered to the node.
type AntReceived struct {
	AntID idgen.ID
	From  ant.Address
	State State
}

// AntReturned describes a completed round trip. RTT is in seconds.
type AntReturned struct {
	AntID  idgen.ID
	Type   ant.Type
	Target ant.Address
	Medium ant.Address
	RTT    timing.VTimeInSec
}

// LoadPath describes the path chosen for a load ant.
type LoadPath struct {
	Time   timing.VTimeInSec
	Source ant.Address
	AntID  idgen.ID
	Path   []ant.Address
}

// A Node is one participant of the protocol.
type Node struct {
	hooking.HookableBase

	name      string
	local     ant.Address
	engine    timing.EventScheduler
	transport Transport
	codec     *ant.Codec
	dir       Directory
	pathMgr   pathmgr.Manager
	loadStats *stats.LoadStatistics
	log       logrus.Ext1FieldLogger

	computingDelay   dist.Distribution
	delayIncrement   float64
	explorersEnabled bool
	explorerInterval timing.VTimeInSec
	loadTime         dist.Distribution
	loadQuantity     dist.Distribution
	loadTarget       dist.Distribution
	message          []byte

	routing     map[idgen.ID]RoutingEntry
	numSent     uint64
	numReceived uint64
}

// Name returns the name of the node.
func (n *Node) Name() string {
	return n.name
}

// Address returns the address of the node.
func (n *Node) Address() ant.Address {
	return n.local
}

// PathManager returns the path manager owned by the node.
func (n *Node) PathManager() pathmgr.Manager {
	return n.pathMgr
}

// LoadStatistics returns the load model of the node.
func (n *Node) LoadStatistics() *stats.LoadStatistics {
	return n.loadStats
}

// RoutingEntry returns the routing-table entry of an in-flight ant.
func (n *Node) RoutingEntry(id idgen.ID) (RoutingEntry, bool) {
	e, ok := n.routing[id]
	return e, ok
}

// RoutingTableSize returns the number of in-flight ants the node tracks.
func (n *Node) RoutingTableSize() int {
	return len(n.routing)
}

// NumSent returns the number of packets the node handed to the transport.
func (n *Node) NumSent() uint64 {
	return n.numSent
}

// NumReceived returns the number of packets delivered to the node.
func (n *Node) NumReceived() uint64 {
	return n.numReceived
}

// Handle processes the events scheduled for the node.
func (n *Node) Handle(e timing.Event) error {
	switch e := e.(type) {
	case *network.DeliveryEvent:
		return n.Receive(e.From, e.Packet)
	case *sendEvent:
		return n.send(e)
	case *exploreEvent:
		return n.ExplorePaths()
	case *scheduleLoadEvent:
		return n.ScheduleLoad()
	case *sendLoadEvent:
		return n.SendLoad(e.target, e.message)
	default:
		panic(fmt.Sprintf("cannot handle event of type %T", e))
	}
}

// Start schedules the periodic activities of the node from time t.
func (n *Node) Start(t timing.VTimeInSec) {
	n.log.Infof("[%s] starting at %.6fs", n.name, t)

	if n.loadTime != nil {
		n.engine.Schedule(&scheduleLoadEvent{
			EventBase: timing.NewEventBase(t, n),
		})
	}

	if n.explorersEnabled {
		n.engine.Schedule(&exploreEvent{
			EventBase: timing.NewEventBase(t, n),
		})
	}
}

func (n *Node) computationDelay() timing.VTimeInSec {
	return timing.Milliseconds(
		n.computingDelay.Sample() * (1 + n.delayIncrement))
}

func (n *Node) requirePathManager() error {
	if n.pathMgr == nil {
		return fmt.Errorf("%w: node %s has no path manager",
			ErrProtocolInvariant, n.local)
	}

	return nil
}
