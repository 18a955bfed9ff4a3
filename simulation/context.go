package simulation

import (
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/network"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
)

// A SimulationContext holds what every part of a simulation run shares: the
// engine, the ant ID sequence, the node directory and the random streams.
type SimulationContext struct {
	engine  *timing.SerialEngine
	ids     idgen.Generator
	dir     *network.Directory
	streams dist.Streams
}

// NewSimulationContext creates the context of a run of n nodes.
func NewSimulationContext(n int, seed, run uint64) *SimulationContext {
	return &SimulationContext{
		engine:  timing.NewSerialEngine(),
		ids:     idgen.New(),
		dir:     network.NewDirectory(n),
		streams: dist.NewStreams(seed, run),
	}
}

// Engine returns the engine of the run.
func (c *SimulationContext) Engine() *timing.SerialEngine {
	return c.engine
}

// IDs returns the generator of the ant IDs.
func (c *SimulationContext) IDs() idgen.Generator {
	return c.ids
}

// Directory returns the nodes of the network.
func (c *SimulationContext) Directory() *network.Directory {
	return c.dir
}

// Streams returns the random streams of the run.
func (c *SimulationContext) Streams() dist.Streams {
	return c.streams
}

// NumAntsCreated returns how many ants have been created so far.
func (c *SimulationContext) NumAntsCreated() uint64 {
	return c.ids.Count()
}
