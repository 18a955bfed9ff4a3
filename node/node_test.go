package node

import (
	"errors"
	"fmt"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/dist"
	"github.com/sarchlab/arap/network"
	"github.com/sarchlab/arap/pathmgr"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.uber.org/mock/gomock"
)

type fixedClock struct {
	now timing.VTimeInSec
}

func (c *fixedClock) Now() timing.VTimeInSec {
	return c.now
}

func addr(i byte) ant.Address {
	return ant.AddressFrom4(10, 1, 1, i)
}

var _ = Describe("Node", func() {
	var (
		mockCtrl  *gomock.Controller
		engine    *MockEventScheduler
		transport *MockTransport
		manager   *MockManager
		dir       *network.Directory
		now       timing.VTimeInSec
		clock     *fixedClock
		codec     *ant.Codec
		n         *Node
		scheduled []timing.Event
	)

	build := func(local ant.Address) *Node {
		codec, _ = ant.NewCodec(128, idgen.New(), clock)

		node, err := MakeBuilder().
			WithEngine(engine).
			WithTransport(transport).
			WithCodec(codec).
			WithDirectory(dir).
			WithPathManager(manager).
			WithComputingDelay(dist.Constant(10), 0.5).
			WithLogger(logrus.New()).
			Build("Node", local)
		Expect(err).NotTo(HaveOccurred())

		return node
	}

	sendEvents := func() []*sendEvent {
		var out []*sendEvent

		for _, e := range scheduled {
			if s, ok := e.(*sendEvent); ok {
				out = append(out, s)
			}
		}

		return out
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEventScheduler(mockCtrl)
		transport = NewMockTransport(mockCtrl)
		manager = NewMockManager(mockCtrl)
		dir = network.NewDirectory(4)
		now = 2
		clock = &fixedClock{now: 1}
		scheduled = nil

		engine.EXPECT().Now().
			DoAndReturn(func() timing.VTimeInSec { return now }).
			AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e timing.Event) { scheduled = append(scheduled, e) }).
			AnyTimes()

		n = build(addr(2))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should refuse to build without a transport", func() {
		_, err := MakeBuilder().
			WithEngine(engine).
			WithCodec(codec).
			WithDirectory(dir).
			Build("Node", addr(1))

		Expect(err).To(MatchError(ErrProtocolInvariant))
	})

	It("should relay a request to the next hop", func() {
		id, packet, err := codec.EncodeLoad(
			[]ant.Address{addr(2), addr(3), addr(4)}, []byte("hi"))
		Expect(err).NotTo(HaveOccurred())

		Expect(n.Receive(addr(1), packet)).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(1))
		Expect(sends[0].Time()).To(BeNumerically("~", 2.015, 1e-12))
		Expect(sends[0].kind).To(Equal(SendRequest))
		Expect(sends[0].to).To(Equal(addr(3)))
		Expect(sends[0].source).To(Equal(addr(1)))

		inner, _ := ant.AdvanceLayer(packet)
		Expect(sends[0].packet).To(Equal(inner))

		_, ok := n.RoutingEntry(id)
		Expect(ok).To(BeFalse())

		transport.EXPECT().Send(addr(2), addr(3), inner).Return(nil)
		Expect(n.Handle(sends[0])).To(Succeed())

		entry, ok := n.RoutingEntry(id)
		Expect(ok).To(BeTrue())
		Expect(entry).To(Equal(RoutingEntry{Source: addr(1), Target: addr(3)}))
		Expect(n.NumSent()).To(Equal(uint64(1)))
	})

	It("should keep sub-millisecond computation delays", func() {
		n.computingDelay = dist.Constant(0.3)
		_, packet, err := codec.EncodeLoad(
			[]ant.Address{addr(2), addr(3), addr(4)}, []byte("hi"))
		Expect(err).NotTo(HaveOccurred())

		Expect(n.Receive(addr(1), packet)).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(1))
		Expect(sends[0].Time()).To(BeNumerically("~", 2.00045, 1e-12))
	})

	It("should trace the ants it relays", func() {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.TraceLevel)
		n.log = logger

		id, packet, err := codec.EncodeLoad(
			[]ant.Address{addr(2), addr(3), addr(4)}, []byte("hi"))
		Expect(err).NotTo(HaveOccurred())

		Expect(n.Receive(addr(1), packet)).To(Succeed())

		inner, _ := ant.AdvanceLayer(packet)
		transport.EXPECT().Send(addr(2), addr(3), inner).Return(nil)
		Expect(n.Handle(sendEvents()[0])).To(Succeed())

		Expect(hook.AllEntries()).To(HaveLen(2))
		Expect(hook.AllEntries()[0].Level).To(Equal(logrus.TraceLevel))
		Expect(hook.AllEntries()[0].Message).To(HavePrefix(
			fmt.Sprintf("[Node] received ant %d from %s", id, addr(1))))
		Expect(hook.LastEntry().Message).To(HavePrefix(
			fmt.Sprintf("[Node] sent ant %d to %s", id, addr(3))))
	})

	It("should echo an explorer back to its sender", func() {
		_, packet, _ := codec.EncodeExplorer(addr(2))
		final, _ := ant.AdvanceLayer(packet)

		Expect(n.Receive(addr(3), final)).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(1))
		Expect(sends[0].kind).To(Equal(SendPivot))
		Expect(sends[0].to).To(Equal(addr(3)))
		Expect(sends[0].packet).To(Equal(final))

		transport.EXPECT().Send(addr(2), addr(3), final).Return(nil)
		Expect(n.Handle(sends[0])).To(Succeed())
		Expect(n.RoutingTableSize()).To(Equal(0))
	})

	It("should answer a load ant", func() {
		id, packet, _ := codec.EncodeLoad([]ant.Address{addr(2)}, []byte("hi"))

		Expect(n.Receive(addr(4), packet)).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(1))
		Expect(sends[0].kind).To(Equal(SendPivot))

		answer, err := ant.DecodeFinal(sends[0].packet)
		Expect(err).NotTo(HaveOccurred())
		Expect(answer.AntID).To(Equal(id))
		Expect(answer.Type).To(Equal(ant.TypeLoad))
		Expect(answer.Target).To(Equal(addr(2)))
		Expect(answer.SendTime).To(Equal(ant.SendTimeOf(1)))
		Expect(string(answer.Message)).To(ContainSubstring("sent to node 10.1.1.2"))
	})

	It("should forward a response and forget the ant", func() {
		_, packet, _ := codec.EncodeExplorer(addr(4))
		id, _ := ant.ReadAntID(packet)
		n.routing[id] = RoutingEntry{Source: addr(1), Target: addr(4)}
		final, _ := ant.AdvanceLayer(packet)

		Expect(n.Receive(addr(4), final)).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(1))
		Expect(sends[0].kind).To(Equal(SendResponse))
		Expect(sends[0].to).To(Equal(addr(1)))

		transport.EXPECT().Send(addr(2), addr(1), final).Return(nil)
		Expect(n.Handle(sends[0])).To(Succeed())
		Expect(n.RoutingTableSize()).To(Equal(0))
	})

	It("should reject a response from an unexpected node", func() {
		_, packet, _ := codec.EncodeExplorer(addr(4))
		id, _ := ant.ReadAntID(packet)
		n.routing[id] = RoutingEntry{Source: addr(1), Target: addr(4)}

		err := n.Receive(addr(3), packet)

		Expect(err).To(MatchError(ErrProtocolInvariant))
	})

	It("should feed a returning explorer to the path manager", func() {
		_, packet, _ := codec.EncodeExplorer(addr(4))
		id, _ := ant.ReadAntID(packet)
		n.routing[id] = RoutingEntry{Source: addr(2), Target: addr(3)}
		final, _ := ant.AdvanceLayer(packet)

		var returned []AntReturned
		n.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosAntReturned {
				returned = append(returned, ctx.Item.(AntReturned))
			}
		}))

		manager.EXPECT().
			HandleExplorerReturn(addr(4), addr(3), gomock.Any()).
			DoAndReturn(func(_, _ ant.Address, rtt float64) error {
				Expect(rtt).To(BeNumerically("~", 1000, 1e-6))
				return nil
			})

		Expect(n.Receive(addr(3), final)).To(Succeed())
		Expect(n.RoutingTableSize()).To(Equal(0))
		Expect(returned).To(HaveLen(1))
		Expect(returned[0].RTT).To(BeNumerically("~", 1, 1e-9))
		Expect(sendEvents()).To(BeEmpty())
	})

	It("should record a returning load ant", func() {
		id, _, _ := codec.EncodeLoad([]ant.Address{addr(3), addr(4)}, nil)
		n.routing[id] = RoutingEntry{Source: addr(2), Target: addr(3)}
		answer, _ := codec.EncodeAnswer(ant.SendTimeOf(1), addr(4), id, []byte("ok"))

		Expect(n.Receive(addr(3), answer)).To(Succeed())

		Expect(n.LoadStatistics().NumSamples()).To(Equal(uint64(1)))
		Expect(n.LoadStatistics().SamplesFor(addr(4))).To(Equal(uint64(1)))
		Expect(n.LoadStatistics().Mean()).To(BeNumerically("~", 1, 1e-9))
	})

	It("should fail when the transport refuses a packet", func() {
		_, packet, _ := codec.EncodeLoad(
			[]ant.Address{addr(2), addr(3)}, nil)
		Expect(n.Receive(addr(1), packet)).To(Succeed())

		transport.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("link down"))

		err := n.Handle(sendEvents()[0])

		Expect(err).To(MatchError(ErrTransportSend))
		Expect(n.RoutingTableSize()).To(Equal(0))
	})

	It("should refuse to route the same ant twice", func() {
		id, packet, _ := codec.EncodeLoad(
			[]ant.Address{addr(2), addr(3)}, nil)
		n.routing[id] = RoutingEntry{Source: addr(4), Target: addr(1)}

		Expect(n.handleRequestMedium(id, addr(1), packet)).To(Succeed())
		err := n.Handle(sendEvents()[0])

		Expect(err).To(MatchError(ErrProtocolInvariant))
	})

	It("should explore every target through every medium", func() {
		n.explorerInterval = 0.5

		Expect(n.ExplorePaths()).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(6))

		for _, s := range sends {
			Expect(s.kind).To(Equal(SendRequest))
			Expect(s.source).To(Equal(addr(2)))
			Expect(s.to).NotTo(Equal(addr(2)))

			target, err := ant.ReadNextHop(s.packet)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).NotTo(Equal(s.to))
			Expect(target).NotTo(Equal(addr(2)))
		}

		last := scheduled[len(scheduled)-1]
		Expect(last).To(BeAssignableToTypeOf(&exploreEvent{}))
		Expect(last.Time()).To(BeNumerically("~", 2.5, 1e-12))
	})

	It("should send a load ant over the path of the manager", func() {
		path := []ant.Address{addr(1), addr(3), addr(4)}
		manager.EXPECT().CreatePath(addr(4)).Return(path, nil)

		var recorded []LoadPath
		n.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosLoadPath {
				recorded = append(recorded, ctx.Item.(LoadPath))
			}
		}))

		Expect(n.SendLoad(addr(4), []byte("m"))).To(Succeed())

		sends := sendEvents()
		Expect(sends).To(HaveLen(1))
		Expect(sends[0].to).To(Equal(addr(1)))
		Expect(sends[0].source).To(Equal(addr(2)))
		Expect(recorded).To(HaveLen(1))
		Expect(recorded[0].Path).To(Equal(path))
		Expect(recorded[0].Time).To(Equal(now))
	})

	It("should schedule batches of load ants", func() {
		n.loadTime = dist.Constant(0.25)
		n.loadTarget = dist.Constant(3)
		n.loadQuantity = dist.Constant(3)

		Expect(n.ScheduleLoad()).To(Succeed())

		Expect(scheduled).To(HaveLen(4))
		for _, e := range scheduled[:3] {
			Expect(e).To(BeAssignableToTypeOf(&sendLoadEvent{}))
			Expect(e.(*sendLoadEvent).target).To(Equal(addr(4)))
			Expect(e.Time()).To(BeNumerically("~", 2.25, 1e-12))
		}
		Expect(scheduled[3]).To(BeAssignableToTypeOf(&scheduleLoadEvent{}))
	})

	It("should skip a batch when only itself can be drawn", func() {
		n.loadTime = dist.Constant(1)
		n.loadTarget = dist.Constant(1)
		n.loadQuantity = dist.Constant(5)

		Expect(n.ScheduleLoad()).To(Succeed())

		Expect(scheduled).To(HaveLen(1))
		Expect(scheduled[0]).To(BeAssignableToTypeOf(&scheduleLoadEvent{}))
	})

	It("should panic on unknown events", func() {
		type strangeEvent struct{ *timing.EventBase }

		Expect(func() {
			_ = n.Handle(strangeEvent{timing.NewEventBase(3, n)})
		}).To(Panic())
	})
})

var _ = Describe("Nodes on a star", func() {
	It("should bring every load ant back over its reverse path", func() {
		engine := timing.NewSerialEngine()
		dir := network.NewDirectory(5)
		star := network.MakeBuilder().
			WithEngine(engine).
			WithDirectory(dir).
			WithPacketSize(128).
			WithDelayDistribution(dist.Constant(5)).
			Build("Star")
		codec, err := ant.NewCodec(128, idgen.New(), engine)
		Expect(err).NotTo(HaveOccurred())

		nodes := make([]*Node, dir.Len())
		for i, a := range dir.Addresses() {
			mgr, err := pathmgr.NewUniform(a, dir.Addresses(), 3,
				rand.New(rand.NewPCG(uint64(i), 7)))
			Expect(err).NotTo(HaveOccurred())

			nodes[i], err = MakeBuilder().
				WithEngine(engine).
				WithTransport(star).
				WithCodec(codec).
				WithDirectory(dir).
				WithPathManager(mgr).
				WithLogger(logrus.New()).
				Build(a.String(), a)
			Expect(err).NotTo(HaveOccurred())
			Expect(star.Attach(a, nodes[i])).To(Succeed())
		}

		for i := 1; i < len(nodes); i++ {
			target := nodes[i].Address()
			engine.Schedule(&sendLoadEvent{
				EventBase: timing.NewEventBase(0, nodes[0]),
				target:    target,
				message:   []byte("hello"),
			})
		}

		Expect(engine.Run()).To(Succeed())

		load := nodes[0].LoadStatistics()
		Expect(load.NumSamples()).To(Equal(uint64(4)))
		Expect(load.Mean()).To(BeNumerically("~", 0.06, 1e-9))
		for _, node := range nodes {
			Expect(node.RoutingTableSize()).To(Equal(0))
		}
		Expect(star.NumSent()).To(Equal(uint64(24)))
	})
})
