package sim

import (
	"log"
	"reflect"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new LogEventHook which will write in to the logger.
// Events are logged at trace level.
func NewEventLogger(logger *log.Logger, level LogLevel) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	h.Level = level

	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	named, ok := evt.Handler().(Named)
	if ok {
		h.Logf(LogLevelTrace, "%d, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), named.Name())
	} else {
		h.Logf(LogLevelTrace, "%d, %s", evt.Time(), reflect.TypeOf(evt))
	}
}
