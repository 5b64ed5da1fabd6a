// Package dut holds the reference model of the device the testbench checks:
// a counter that increments on enable and clears on reset.
package dut

import (
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// HookPosUpdate is triggered after the counter computes its value on a rising
// edge. The item is the new value.
var HookPosUpdate = &sim.HookPos{Name: "CounterUpdate"}

// A Fault may replace the value the counter computes on an edge. Cycle counts
// the rising edges seen by the counter, starting from 0.
type Fault func(cycle uint64, next uint64) uint64

// Counter is a synchronous counter with an active-high reset. On each rising
// edge it clears if reset was high, otherwise it increments if enable was
// high, wrapping at the width of the value bus.
type Counter struct {
	sim.HookableBase

	name  string
	ifc   *signal.Interface
	val   *signal.Writer
	fault Fault
	cycle uint64
}

// Option configures a counter.
type Option func(c *Counter)

// WithFault makes the counter misbehave according to f.
func WithFault(f Fault) Option {
	return func(c *Counter) {
		c.fault = f
	}
}

// NewCounter creates a counter that owns the value bus of the interface.
func NewCounter(name string, ifc *signal.Interface, opts ...Option) *Counter {
	c := &Counter{
		name: name,
		ifc:  ifc,
		val:  ifc.Val.Claim(name),
	}

	for _, o := range opts {
		o(c)
	}

	ifc.Clk.OnPosedge(c.tick)

	return c
}

// Name returns the name of the counter.
func (c *Counter) Name() string {
	return c.name
}

// Value returns the current output of the counter.
func (c *Counter) Value() uint64 {
	return c.ifc.Val.Value()
}

func (c *Counter) tick() {
	next := c.ifc.Val.Value()

	switch {
	case c.ifc.Reset.Previous() != 0:
		next = 0
	case c.ifc.En.Previous() != 0:
		next = (next + 1) & c.ifc.MaxValue()
	}

	if c.fault != nil {
		next = c.fault(c.cycle, next) & c.ifc.MaxValue()
	}
	c.cycle++

	c.val.Put(next)

	c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosUpdate, Item: next})
}
