// Package sampling provides passive monitors that turn interface activity
// into timestamped samples.
package sampling

import (
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// HookPosSample is triggered when a monitor takes a sample. The item of the
// hook context is the sample.
var HookPosSample = &sim.HookPos{Name: "Sample"}

// A Sample is one observation taken by a monitor.
type Sample[T any] struct {
	Time  sim.VTime
	Cycle uint64
	Value T
}

// A Monitor samples the interface on every rising clock edge once reset has
// been released. It only reads signals.
type Monitor[T any] struct {
	sim.HookableBase

	name        string
	clk         *signal.Signal
	reset       *signal.Signal
	sampler     func() T
	subscribers []func(Sample[T])
	numSamples  uint64
}

// NewMonitor creates a monitor that calls sampler on every sampled edge.
func NewMonitor[T any](
	name string,
	clk, reset *signal.Signal,
	sampler func() T,
) *Monitor[T] {
	return &Monitor[T]{
		name:    name,
		clk:     clk,
		reset:   reset,
		sampler: sampler,
	}
}

// NewValueMonitor creates a monitor that reports the counter value as it is
// right after each rising edge.
func NewValueMonitor(name string, ifc *signal.Interface) *Monitor[uint64] {
	return NewMonitor(name, ifc.Clk, ifc.Reset, ifc.Val.Value)
}

// NewEnableMonitor creates a monitor that reports whether the enable was
// captured by the design at each rising edge.
func NewEnableMonitor(name string, ifc *signal.Interface) *Monitor[bool] {
	return NewMonitor(name, ifc.Clk, ifc.Reset, func() bool {
		return ifc.En.Previous() != 0
	})
}

// Name returns the name of the monitor.
func (m *Monitor[T]) Name() string {
	return m.name
}

// NumSamples returns the number of samples taken so far.
func (m *Monitor[T]) NumSamples() uint64 {
	return m.numSamples
}

// Subscribe registers a consumer of the samples. Consumers are called in
// registration order.
func (m *Monitor[T]) Subscribe(fn func(s Sample[T])) {
	m.subscribers = append(m.subscribers, fn)
}

// Build does nothing.
func (m *Monitor[T]) Build() {}

// Connect does nothing.
func (m *Monitor[T]) Connect() {}

// Run waits for reset to be released and then samples on every rising edge.
func (m *Monitor[T]) Run(p *sim.Process) {
	p.Await(m.reset.NextNegedge())

	for {
		p.Await(m.clk.NextPosedge())
		m.sample(p.Now())
	}
}

func (m *Monitor[T]) sample(now sim.VTime) {
	s := Sample[T]{
		Time:  now,
		Cycle: m.numSamples,
		Value: m.sampler(),
	}
	m.numSamples++

	m.InvokeHook(sim.HookCtx{Domain: m, Pos: HookPosSample, Item: s})

	for _, fn := range m.subscribers {
		fn(s)
	}
}
