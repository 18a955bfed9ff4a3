package simulation

import (
	"errors"
	"fmt"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/config"
	"github.com/sarchlab/arap/datarecording"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/monitoring"
	"github.com/sarchlab/arap/network"
	"github.com/sarchlab/arap/node"
	"github.com/sarchlab/arap/pathmgr"
	"github.com/sarchlab/arap/report"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sirupsen/logrus"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg      *config.Config
	log      logrus.Ext1FieldLogger
	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor

	logEvents bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		log: logrus.StandardLogger(),
	}
}

// WithConfig sets the parameters of the simulation.
func (b Builder) WithConfig(c *config.Config) Builder {
	b.cfg = c
	return b
}

// WithLogger sets the logger shared by every part of the simulation.
func (b Builder) WithLogger(l logrus.Ext1FieldLogger) Builder {
	b.log = l
	return b
}

// WithDataRecorder makes the reports also go to a database.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithMonitor registers the engine and the nodes to a monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithEventLogging logs every event handled by the engine at the trace level.
func (b Builder) WithEventLogging() Builder {
	b.logEvents = true
	return b
}

// Build validates the configuration and wires the simulation.
func (b Builder) Build() (*Simulation, error) {
	if b.cfg == nil {
		return nil, errors.New("simulation: no configuration given")
	}

	if err := b.cfg.ValidateWithLogger(b.log); err != nil {
		return nil, err
	}

	ctx := NewSimulationContext(b.cfg.Nodes, b.cfg.Seed, b.cfg.Run)

	s := &Simulation{
		ctx:      ctx,
		cfg:      b.cfg,
		log:      b.log,
		recorder: b.recorder,
		monitor:  b.monitor,
	}

	if b.logEvents {
		ctx.Engine().AcceptHook(timing.NewEventLogger(b.log))
	}

	codec, err := ant.NewCodec(b.cfg.AntSize, ctx.IDs(), ctx.Engine())
	if err != nil {
		return nil, err
	}

	if err := b.buildNetwork(s); err != nil {
		return nil, err
	}

	s.reporter, err = report.New(report.Options{
		Dir:         b.cfg.OutputDir,
		Seed:        b.cfg.Seed,
		Run:         b.cfg.Run,
		ExplorersOn: b.cfg.EnableExplorerAnts,
		Recorder:    b.recorder,
		Log:         b.log,
	})
	if err != nil {
		return nil, err
	}

	if err := b.buildNodes(s, codec); err != nil {
		return nil, err
	}

	if b.monitor != nil {
		b.monitor.RegisterEngine(ctx.Engine())

		for _, n := range s.nodes {
			b.monitor.RegisterNode(n)
		}
	}

	return s, nil
}

func (b Builder) buildNetwork(s *Simulation) error {
	delays, err := s.ctx.Streams().New(b.cfg.LinkDelay.Dist, "link-delay")
	if err != nil {
		return fmt.Errorf("%w: linkDelay: %w", config.ErrConfiguration, err)
	}

	s.star = network.MakeBuilder().
		WithEngine(s.ctx.Engine()).
		WithDirectory(s.ctx.Directory()).
		WithPacketSize(b.cfg.AntSize).
		WithDelayDistribution(delays).
		Build("Network")

	return nil
}

func (b Builder) buildNodes(s *Simulation, codec *ant.Codec) error {
	dir := s.ctx.Directory()
	streams := s.ctx.Streams()

	desc, err := b.cfg.Descriptor()
	if err != nil {
		return err
	}

	desc.Addresses = dir.Addresses()
	desc.NewRand = func(local ant.Address) pathmgr.Rand {
		return streams.Rand("path-manager " + local.String())
	}

	for i := 0; i < dir.Len(); i++ {
		address, err := dir.Address(i)
		if err != nil {
			return err
		}

		n, err := b.buildNode(s, codec, desc, i, address)
		if err != nil {
			return err
		}

		n.AcceptHook(s.reporter)

		if err := s.star.Attach(address, n); err != nil {
			return err
		}

		s.nodes = append(s.nodes, n)
	}

	return nil
}

func (b Builder) buildNode(
	s *Simulation,
	codec *ant.Codec,
	desc pathmgr.Descriptor,
	i int,
	address ant.Address,
) (*node.Node, error) {
	p := b.cfg.Node(i)
	streams := s.ctx.Streams()

	newDist := func(spec dist.Spec, param string) (dist.Distribution, error) {
		d, err := streams.New(spec, fmt.Sprintf("node %d %s", i, param))
		if err != nil {
			return nil, fmt.Errorf("%w: %s of node %d: %w",
				config.ErrConfiguration, param, i, err)
		}

		return d, nil
	}

	computing, err := newDist(p.ComputingDelay, "computingDelay")
	if err != nil {
		return nil, err
	}

	period, err := newDist(p.LoadAntTime, "loadAntTime")
	if err != nil {
		return nil, err
	}

	target, err := newDist(p.LoadAntTarget, "loadAntTarget")
	if err != nil {
		return nil, err
	}

	quantity, err := newDist(p.LoadAntQuantity, "loadAntQuantity")
	if err != nil {
		return nil, err
	}

	pm, err := desc.Clone(address)
	if err != nil {
		return nil, err
	}

	nb := node.MakeBuilder().
		WithEngine(s.ctx.Engine()).
		WithTransport(s.star).
		WithCodec(codec).
		WithDirectory(s.ctx.Directory()).
		WithPathManager(pm).
		WithLogger(b.log).
		WithComputingDelay(computing, p.ComputingDelayIncrement).
		WithLoad(period, target, quantity)

	if b.cfg.EnableExplorerAnts {
		nb = nb.WithExplorers(b.cfg.ExplorerInterval)
	}

	return nb.Build("Node "+address.String(), address)
}
