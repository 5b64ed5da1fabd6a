package signal

import (
	"log"

	"github.com/sarchlab/tbkit/sim"
)

// ToggleEvent flips the clock signal.
type ToggleEvent struct {
	*sim.EventBase
}

// A Clock drives a signal with a periodic square wave. The signal starts low
// and rises at the time Start is called, then toggles every half period.
type Clock struct {
	name      string
	engine    sim.EventScheduler
	writer    *Writer
	period    sim.VTime
	running   bool
	numRising uint64
}

// NewClock creates a clock that owns the writer of sig.
func NewClock(
	name string,
	engine sim.EventScheduler,
	sig *Signal,
	period sim.VTime,
) *Clock {
	if period < 2 || period%2 != 0 {
		log.Panicf("clock period must be an even number >= 2, got %d", period)
	}

	return &Clock{
		name:   name,
		engine: engine,
		writer: sig.Claim(name),
		period: period,
	}
}

// Name returns the name of the clock.
func (c *Clock) Name() string {
	return c.name
}

// Period returns the time between two rising edges.
func (c *Clock) Period() sim.VTime {
	return c.period
}

// NumRisingEdges returns how many rising edges the clock has produced.
func (c *Clock) NumRisingEdges() uint64 {
	return c.numRising
}

// Start schedules the first rising edge at the current time.
func (c *Clock) Start() {
	if c.running {
		return
	}

	c.running = true
	c.engine.Schedule(ToggleEvent{sim.NewEventBase(c.engine.CurrentTime(), c)})
}

// Handle flips the clock and schedules the next flip.
func (c *Clock) Handle(e sim.Event) error {
	next := uint64(1)
	if c.writer.Signal().IsHigh() {
		next = 0
	} else {
		c.numRising++
	}

	c.writer.Put(next)

	c.engine.Schedule(ToggleEvent{sim.NewEventBase(e.Time()+c.period/2, c)})

	return nil
}
