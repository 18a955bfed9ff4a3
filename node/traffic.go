package node

import (
	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/timing"
)

const (
	maxTargetDraws = 100
	minLoadPeriod  = 1e-9
)

// DefaultMessage is the message carried by load ants when none is configured.
const DefaultMessage = "mensaje"

// ExplorePaths sends one explorer ant for every pair of target and medium that
// differ from each other and from the node, and runs again after the explorer
// interval.
func (n *Node) ExplorePaths() error {
	addresses := n.dir.Addresses()

	for _, target := range addresses {
		if target == n.local {
			continue
		}

		for _, medium := range addresses {
			if medium == n.local || medium == target {
				continue
			}

			if err := n.sendExplorer(target, medium); err != nil {
				return err
			}
		}
	}

	n.engine.Schedule(&exploreEvent{
		EventBase: timing.NewEventBase(n.engine.Now()+n.explorerInterval, n),
	})

	return nil
}

func (n *Node) sendExplorer(target, medium ant.Address) error {
	id, packet, err := n.codec.EncodeExplorer(target)
	if err != nil {
		return err
	}

	n.scheduleSend(SendRequest, id, n.local, medium, packet)

	return nil
}

// ScheduleLoad draws the period, the destination and the number of the next
// batch of load ants. The batch leaves after the period, and the next batch is
// scheduled at the same time.
func (n *Node) ScheduleLoad() error {
	dt := n.loadTime.Sample()
	if dt < minLoadPeriod {
		dt = minLoadPeriod
	}

	t := n.engine.Now() + dt

	target, ok := n.drawLoadTarget()
	if ok {
		quantity := n.loadQuantity.SampleInt()
		for i := 0; i < quantity; i++ {
			n.engine.Schedule(&sendLoadEvent{
				EventBase: timing.NewEventBase(t, n),
				target:    target,
				message:   n.message,
			})
		}
	}

	n.engine.Schedule(&scheduleLoadEvent{
		EventBase: timing.NewEventBase(t, n),
	})

	return nil
}

func (n *Node) drawLoadTarget() (ant.Address, bool) {
	for i := 0; i < maxTargetDraws; i++ {
		addr, err := n.dir.Address(n.loadTarget.SampleInt())
		if err != nil {
			n.log.Warnf("[%s] drew a load target outside the network: %v",
				n.name, err)
			continue
		}

		if addr != n.local {
			return addr, true
		}
	}

	n.log.Warnf("[%s] no load target other than itself after %d draws, "+
		"skipping the batch", n.name, maxTargetDraws)

	return 0, false
}

// SendLoad sends one load ant to target over a path chosen by the path
// manager.
func (n *Node) SendLoad(target ant.Address, message []byte) error {
	if err := n.requirePathManager(); err != nil {
		return err
	}

	path, err := n.pathMgr.CreatePath(target)
	if err != nil {
		return err
	}

	id, packet, err := n.codec.EncodeLoad(path, message)
	if err != nil {
		return err
	}

	n.scheduleSend(SendRequest, id, n.local, path[0], packet)

	n.InvokeHook(hooking.HookCtx{
		Domain: n,
		Pos:    HookPosLoadPath,
		Item: LoadPath{
			Time:   n.engine.Now(),
			Source: n.local,
			AntID:  id,
			Path:   path,
		},
	})

	return nil
}
