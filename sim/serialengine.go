package sim

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// A SerialEngine is an Engine that handles one event at a time. Events of the
// same time run in the order they were scheduled, and secondary events of a
// time run after all its primary events.
type SerialEngine struct {
	HookableBase

	timeLock       sync.RWMutex
	time           VTime
	queue          *EventQueueImpl
	secondaryQueue *EventQueueImpl

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	terminated atomic.Bool

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.queue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()

	return e
}

// Schedule adds an event. Scheduling an event in the past panics.
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"scheduling an event earlier than current time, evt %s @ %d, now %d",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() VTime {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTime) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run handles events in time order until the queues are empty or the engine
// is terminated. If a handler returns an error, Run stops and returns it; the
// events left in the queues stay scheduled.
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.terminated.Load() || e.noMoreEvent() {
			return nil
		}

		if err := e.step(); err != nil {
			return err
		}
	}
}

func (e *SerialEngine) step() error {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.nextEvent()
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf(
			"cannot run event in the past, evt %s @ %d, now %d",
			reflect.TypeOf(evt), evt.Time(), now,
		)
	}
	e.writeNow(evt.Time())

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	if err := evt.Handler().Handle(evt); err != nil {
		return errors.Wrapf(err, "handling %s @ %d", reflect.TypeOf(evt), evt.Time())
	}

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return nil
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if primaryEvt.Time() <= secondaryEvt.Time() {
		e.queue.Pop()
		return primaryEvt
	}

	e.secondaryQueue.Pop()

	return secondaryEvt
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// Terminate stops the engine after the event being handled. The remaining
// events are dropped.
func (e *SerialEngine) Terminate() {
	e.terminated.Store(true)
	e.queue.Clear()
	e.secondaryQueue.Clear()
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) CurrentTime() VTime {
	return e.readNow()
}

// RegisterSimulationEndHandler invokes all the registered simulation end
// handler.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
