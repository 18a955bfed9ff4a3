// Package simulation wires the nodes, the network and the reports of an ARAP
// simulation and runs it until the stop time.
package simulation

import (
	"fmt"

	"github.com/sarchlab/arap/config"
	"github.com/sarchlab/arap/datarecording"
	"github.com/sarchlab/arap/monitoring"
	"github.com/sarchlab/arap/network"
	"github.com/sarchlab/arap/node"
	"github.com/sarchlab/arap/report"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sarchlab/arap/stats"
	"github.com/sirupsen/logrus"
)

// A Result is what a finished run produced.
type Result struct {
	StopTime       timing.VTimeInSec
	NumAntsCreated uint64
	NumPackets     uint64
	Load           stats.Summary
}

type changeDelaysEvent struct {
	*timing.EventBase
}

type printTablesEvent struct {
	*timing.EventBase
}

type stopEvent struct {
	*timing.EventBase
}

// A Simulation is a fully wired run.
type Simulation struct {
	ctx      *SimulationContext
	cfg      *config.Config
	log      logrus.Ext1FieldLogger
	star     *network.Star
	nodes    []*node.Node
	reporter *report.Reporter
	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor
	progress *monitoring.ProgressBar
}

// Name returns the name of the simulator-level handler.
func (s *Simulation) Name() string {
	return "Simulation"
}

// Context returns the shared state of the run.
func (s *Simulation) Context() *SimulationContext {
	return s.ctx
}

// Nodes returns the nodes, ordered by index.
func (s *Simulation) Nodes() []*node.Node {
	return s.nodes
}

// Network returns the transport connecting the nodes.
func (s *Simulation) Network() *network.Star {
	return s.star
}

// Reporter returns the writer of the reports.
func (s *Simulation) Reporter() *report.Reporter {
	return s.reporter
}

// Run starts the nodes and handles events until the stop time. The final
// probability tables and the load model are written before returning.
func (s *Simulation) Run() (Result, error) {
	engine := s.ctx.Engine()

	for i, n := range s.nodes {
		n.Start(s.cfg.Node(i).AppStartTime)
	}

	if s.cfg.LinkDelay.Interval > 0 {
		engine.Schedule(&changeDelaysEvent{
			EventBase: timing.NewSecondaryEventBase(s.cfg.LinkDelay.Interval, s),
		})
	}

	if s.cfg.PrintTablesInterval > 0 {
		engine.Schedule(&printTablesEvent{
			EventBase: timing.NewSecondaryEventBase(0, s),
		})
	}

	engine.Schedule(&stopEvent{
		EventBase: timing.NewSecondaryEventBase(s.cfg.StopTime, s),
	})

	s.startProgress()

	s.log.Infof("[Simulation] running %d nodes until %.3fs",
		len(s.nodes), s.cfg.StopTime)

	if err := engine.Run(); err != nil {
		return Result{}, fmt.Errorf("simulation stopped at %.9fs: %w",
			engine.Now(), err)
	}

	return s.finish()
}

// Handle runs the simulator-level periodic tasks.
func (s *Simulation) Handle(e timing.Event) error {
	engine := s.ctx.Engine()

	switch e := e.(type) {
	case *changeDelaysEvent:
		s.star.ChangeDelays()
		s.log.Debugf("[Simulation] link delays changed at %.6fs", e.Time())
		engine.Schedule(&changeDelaysEvent{
			EventBase: timing.NewSecondaryEventBase(
				e.Time()+s.cfg.LinkDelay.Interval, s),
		})
	case *printTablesEvent:
		if err := s.reporter.PrintTables(e.Time(), s.reportNodes()); err != nil {
			return err
		}

		engine.Schedule(&printTablesEvent{
			EventBase: timing.NewSecondaryEventBase(
				e.Time()+s.cfg.PrintTablesInterval, s),
		})
	case *stopEvent:
		s.log.Infof("[Simulation] stop time %.3fs reached", e.Time())
		engine.Stop()
	default:
		panic(fmt.Sprintf("cannot handle event of type %T", e))
	}

	return nil
}

func (s *Simulation) finish() (Result, error) {
	now := s.ctx.Engine().Now()
	nodes := s.reportNodes()

	if err := s.reporter.PrintTables(now, nodes); err != nil {
		return Result{}, err
	}

	summary, err := s.reporter.PrintLoadModel(nodes)
	if err != nil {
		return Result{}, err
	}

	s.completeProgress()

	r := Result{
		StopTime:       now,
		NumAntsCreated: s.ctx.NumAntsCreated(),
		NumPackets:     s.star.NumSent(),
		Load:           summary,
	}

	s.log.Infof("[Simulation] %d ants created, %d packets sent",
		r.NumAntsCreated, r.NumPackets)

	return r, nil
}

// Terminate releases the reports, the recorder and the monitor.
func (s *Simulation) Terminate() error {
	if s.monitor != nil {
		if err := s.monitor.StopServer(); err != nil {
			s.log.Warnf("[Simulation] cannot stop the monitor: %v", err)
		}
	}

	if err := s.reporter.Close(); err != nil {
		return err
	}

	if s.recorder != nil {
		return s.recorder.Close()
	}

	return nil
}

func (s *Simulation) reportNodes() []report.Node {
	nodes := make([]report.Node, len(s.nodes))
	for i, n := range s.nodes {
		nodes[i] = n
	}

	return nodes
}

func (s *Simulation) startProgress() {
	if s.monitor == nil {
		return
	}

	s.progress = s.monitor.CreateProgressBar("Simulated ms",
		uint64(s.cfg.StopTime*1000))

	s.ctx.Engine().AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos != timing.HookPosAfterEvent {
			return
		}

		e := ctx.Item.(timing.Event)
		s.progress.SetFinished(uint64(e.Time() * 1000))
	}))
}

func (s *Simulation) completeProgress() {
	if s.progress != nil {
		s.monitor.CompleteProgressBar(s.progress)
	}
}
