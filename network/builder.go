package network

import (
	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/sim/timing"
)

// Builder can help building a Star.
type Builder struct {
	engine     timing.EventScheduler
	dir        *Directory
	packetSize int
	delayDist  dist.Distribution
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		packetSize: ant.MinCapacity,
	}
}

// WithEngine sets the engine that delivers the packets.
func (b Builder) WithEngine(e timing.EventScheduler) Builder {
	b.engine = e
	return b
}

// WithDirectory sets the nodes of the network.
func (b Builder) WithDirectory(d *Directory) Builder {
	b.dir = d
	return b
}

// WithPacketSize sets the only packet size the network accepts.
func (b Builder) WithPacketSize(n int) Builder {
	b.packetSize = n
	return b
}

// WithDelayDistribution sets the distribution of the link delays, in
// milliseconds.
func (b Builder) WithDelayDistribution(d dist.Distribution) Builder {
	b.delayDist = d
	return b
}

// Build creates the Star. Every link starts with a delay drawn from the delay
// distribution.
func (b Builder) Build(name string) *Star {
	s := &Star{
		name:        name,
		engine:      b.engine,
		dir:         b.dir,
		packetSize:  b.packetSize,
		delayDist:   b.delayDist,
		linkDelay:   make([]timing.VTimeInSec, b.dir.Len()),
		lastArrival: make(map[linkKey]timing.VTimeInSec),
		receivers:   make([]timing.Handler, b.dir.Len()),
	}

	s.ChangeDelays()

	return s
}
