package timing

import (
	"reflect"

	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sirupsen/logrus"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	logger logrus.Ext1FieldLogger
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger logrus.Ext1FieldLogger) *EventLogger {
	h := new(EventLogger)

	h.logger = logger

	return h
}

type named interface {
	Name() string
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	handlerName := "unnamed"
	if n, ok := evt.Handler().(named); ok {
		handlerName = n.Name()
	}

	h.logger.Tracef("%.10f, %s -> %s",
		evt.Time(), reflect.TypeOf(evt), handlerName)
}
