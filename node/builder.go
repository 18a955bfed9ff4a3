package node

import (
	"fmt"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/pathmgr"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sarchlab/arap/stats"
	"github.com/sirupsen/logrus"
)

// Builder can build nodes.
type Builder struct {
	engine           timing.EventScheduler
	transport        Transport
	codec            *ant.Codec
	dir              Directory
	pathMgr          pathmgr.Manager
	loadStats        *stats.LoadStatistics
	log              logrus.Ext1FieldLogger
	computingDelay   dist.Distribution
	delayIncrement   float64
	explorersEnabled bool
	explorerInterval timing.VTimeInSec
	loadTime         dist.Distribution
	loadQuantity     dist.Distribution
	loadTarget       dist.Distribution
	message          []byte
}

// MakeBuilder creates a builder with default parameters. By default, every
// send is immediate, explorers are off, and no load ant is created.
func MakeBuilder() Builder {
	return Builder{
		computingDelay:   dist.Constant(0),
		explorerInterval: 1,
		message:          []byte(DefaultMessage),
		log:              logrus.StandardLogger(),
	}
}

// WithEngine sets the engine that schedules the events of the node.
func (b Builder) WithEngine(e timing.EventScheduler) Builder {
	b.engine = e
	return b
}

// WithTransport sets the transport the node sends through.
func (b Builder) WithTransport(t Transport) Builder {
	b.transport = t
	return b
}

// WithCodec sets the codec that creates the ants of the node.
func (b Builder) WithCodec(c *ant.Codec) Builder {
	b.codec = c
	return b
}

// WithDirectory sets the list of nodes.
func (b Builder) WithDirectory(d Directory) Builder {
	b.dir = d
	return b
}

// WithPathManager sets the path manager of the node.
func (b Builder) WithPathManager(m pathmgr.Manager) Builder {
	b.pathMgr = m
	return b
}

// WithLoadStatistics sets the model that records the load ant round trips.
// If not set, an empty model over the directory is created.
func (b Builder) WithLoadStatistics(s *stats.LoadStatistics) Builder {
	b.loadStats = s
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l logrus.Ext1FieldLogger) Builder {
	b.log = l
	return b
}

// WithComputingDelay sets the distribution, in milliseconds, of the time the
// node takes before each send, and the factor that stretches it.
func (b Builder) WithComputingDelay(
	d dist.Distribution,
	increment float64,
) Builder {
	b.computingDelay = d
	b.delayIncrement = increment

	return b
}

// WithExplorers turns the explorer ants on, sent every interval.
func (b Builder) WithExplorers(interval timing.VTimeInSec) Builder {
	b.explorersEnabled = true
	b.explorerInterval = interval

	return b
}

// WithLoad sets the distributions of the load traffic: the period between
// batches in seconds, the index of the destination node, and the number of
// ants per batch.
func (b Builder) WithLoad(period, target, quantity dist.Distribution) Builder {
	b.loadTime = period
	b.loadTarget = target
	b.loadQuantity = quantity

	return b
}

// WithMessage sets the message carried by the load ants.
func (b Builder) WithMessage(m []byte) Builder {
	b.message = m
	return b
}

// Build creates a node that owns address.
func (b Builder) Build(name string, address ant.Address) (*Node, error) {
	if err := b.check(); err != nil {
		return nil, fmt.Errorf("node %s: %w", name, err)
	}

	n := &Node{
		name:             name,
		local:            address,
		engine:           b.engine,
		transport:        b.transport,
		codec:            b.codec,
		dir:              b.dir,
		pathMgr:          b.pathMgr,
		loadStats:        b.loadStats,
		log:              b.log,
		computingDelay:   b.computingDelay,
		delayIncrement:   b.delayIncrement,
		explorersEnabled: b.explorersEnabled,
		explorerInterval: b.explorerInterval,
		loadTime:         b.loadTime,
		loadQuantity:     b.loadQuantity,
		loadTarget:       b.loadTarget,
		message:          b.message,
		routing:          make(map[idgen.ID]RoutingEntry),
	}

	if n.loadStats == nil {
		n.loadStats = stats.NewLoadStatistics(b.dir.Addresses())
	}

	return n, nil
}

func (b Builder) check() error {
	switch {
	case b.engine == nil:
		return fmt.Errorf("%w: engine not set", ErrProtocolInvariant)
	case b.transport == nil:
		return fmt.Errorf("%w: transport not set", ErrProtocolInvariant)
	case b.codec == nil:
		return fmt.Errorf("%w: codec not set", ErrProtocolInvariant)
	case b.dir == nil:
		return fmt.Errorf("%w: directory not set", ErrProtocolInvariant)
	case b.explorersEnabled && b.explorerInterval <= 0:
		return fmt.Errorf("%w: explorer interval must be positive",
			ErrProtocolInvariant)
	case b.loadTime != nil && (b.loadTarget == nil || b.loadQuantity == nil):
		return fmt.Errorf("%w: incomplete load distributions",
			ErrProtocolInvariant)
	}

	return nil
}
