package timing

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arap/sim/hooking"
	"go.uber.org/mock/gomock"
)

type testEvent struct {
	*EventBase
	label string
}

func newTestEvent(t VTimeInSec, handler Handler, label string) testEvent {
	return testEvent{EventBase: NewEventBase(t, handler), label: label}
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should handle events in time order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := newTestEvent(2, handler, "late")
		evt2 := newTestEvent(1, handler, "early")

		var handled []string
		handler.EXPECT().
			Handle(gomock.Any()).
			DoAndReturn(func(e Event) error {
				handled = append(handled, e.(testEvent).label)
				Expect(engine.Now()).To(Equal(e.Time()))
				return nil
			}).
			Times(2)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(handled).To(Equal([]string{"early", "late"}))
		Expect(engine.NumHandledEvents()).To(Equal(uint64(2)))
	})

	It("should keep scheduling order for events at the same time", func() {
		handler := NewMockHandler(mockCtrl)

		var handled []string
		handler.EXPECT().
			Handle(gomock.Any()).
			DoAndReturn(func(e Event) error {
				handled = append(handled, e.(testEvent).label)
				return nil
			}).
			AnyTimes()

		for _, l := range []string{"a", "b", "c", "d", "e"} {
			engine.Schedule(newTestEvent(1, handler, l))
		}

		Expect(engine.Run()).To(Succeed())
		Expect(handled).To(Equal([]string{"a", "b", "c", "d", "e"}))
	})

	It("should handle secondary events after primary events", func() {
		handler := NewMockHandler(mockCtrl)
		secondary := testEvent{
			EventBase: NewSecondaryEventBase(1, handler),
			label:     "secondary",
		}
		primary := newTestEvent(1, handler, "primary")

		var handled []string
		handler.EXPECT().
			Handle(gomock.Any()).
			DoAndReturn(func(e Event) error {
				handled = append(handled, e.(testEvent).label)
				return nil
			}).
			Times(2)

		engine.Schedule(secondary)
		engine.Schedule(primary)

		Expect(engine.Run()).To(Succeed())
		Expect(handled).To(Equal([]string{"primary", "secondary"}))
	})

	It("should return the first handler error", func() {
		handler := NewMockHandler(mockCtrl)
		errBoom := errors.New("boom")

		handler.EXPECT().Handle(gomock.Any()).Return(errBoom)

		engine.Schedule(newTestEvent(1, handler, "fail"))
		engine.Schedule(newTestEvent(2, handler, "never"))

		Expect(engine.Run()).To(MatchError(errBoom))
		Expect(engine.Now()).To(Equal(VTimeInSec(1)))
	})

	It("should stop after the current event", func() {
		handler := NewMockHandler(mockCtrl)

		handler.EXPECT().
			Handle(gomock.Any()).
			DoAndReturn(func(Event) error {
				engine.Stop()
				return nil
			})

		engine.Schedule(newTestEvent(1, handler, "stop"))
		engine.Schedule(newTestEvent(2, handler, "never"))

		Expect(engine.Run()).To(Succeed())
		Expect(engine.Now()).To(Equal(VTimeInSec(1)))
	})

	It("should panic when scheduling in the past", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().
			Handle(gomock.Any()).
			DoAndReturn(func(Event) error {
				engine.Schedule(newTestEvent(1, handler, "past"))
				return nil
			})

		engine.Schedule(newTestEvent(2, handler, "now"))

		Expect(func() { _ = engine.Run() }).To(Panic())
	})

	It("should invoke hooks around each event", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any()).Return(nil)

		var positions []*hooking.HookPos
		engine.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		engine.Schedule(newTestEvent(1, handler, "hooked"))

		Expect(engine.Run()).To(Succeed())
		Expect(positions).To(Equal(
			[]*hooking.HookPos{HookPosBeforeEvent, HookPosAfterEvent}))
	})
})
