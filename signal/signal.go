// Package signal provides the pin-level primitives of a testbench: signals
// with edge notification, a free-running clock, and the Interface that
// bundles the signals of one device.
package signal

import (
	"fmt"
	"log"

	"github.com/sarchlab/tbkit/sim"
)

// HookPosChange is the hook position triggered every time the value of a
// signal changes. The hook item is the signal and the detail is a Change.
var HookPosChange = &sim.HookPos{Name: "SignalChange"}

// Change describes a value change of a signal.
type Change struct {
	From, To uint64
}

// A Signal carries a value. It remembers the value it had before its latest
// update, so that readers can tell what a register sampled at an edge.
//
// Readers use Value, Previous and the edge notifications. Writers must own a
// Writer, which is handed out only once per signal.
type Signal struct {
	sim.HookableBase

	name       string
	value      uint64
	previous   uint64
	pending    uint64
	hasPending bool
	writer     *Writer

	posedgeListeners []func()
	negedgeListeners []func()
	posedgeWaiters   []*sim.Future
	negedgeWaiters   []*sim.Future
}

// New creates a signal with an initial value.
func New(name string, initial uint64) *Signal {
	return &Signal{
		name:     name,
		value:    initial,
		previous: initial,
	}
}

// Name returns the name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// Value returns the current value.
func (s *Signal) Value() uint64 {
	return s.value
}

// Previous returns the value right before the latest update.
func (s *Signal) Previous() uint64 {
	return s.previous
}

// IsHigh tells if the current value is non-zero.
func (s *Signal) IsHigh() bool {
	return s.value != 0
}

// HasPending tells if a driven value waits to be latched.
func (s *Signal) HasPending() bool {
	return s.hasPending
}

// Owner returns the name of the writer, or an empty string if the signal has
// not been claimed.
func (s *Signal) Owner() string {
	if s.writer == nil {
		return ""
	}

	return s.writer.owner
}

// Claim hands out the only Writer of the signal. Claiming a signal twice
// panics, because two writers on one signal have no defined result.
func (s *Signal) Claim(owner string) *Writer {
	if s.writer != nil {
		log.Panicf("signal %s is already driven by %s, cannot be claimed by %s",
			s.name, s.writer.owner, owner)
	}

	s.writer = &Writer{sig: s, owner: owner}

	return s.writer
}

// OnPosedge registers a listener that is called synchronously on every rising
// edge. Listeners run in registration order, before any process waiting on
// NextPosedge resumes.
func (s *Signal) OnPosedge(fn func()) {
	s.posedgeListeners = append(s.posedgeListeners, fn)
}

// OnNegedge registers a listener that is called synchronously on every
// falling edge.
func (s *Signal) OnNegedge(fn func()) {
	s.negedgeListeners = append(s.negedgeListeners, fn)
}

// NextPosedge returns a future that resolves on the next rising edge.
func (s *Signal) NextPosedge() *sim.Future {
	f := sim.NewFuture()
	s.posedgeWaiters = append(s.posedgeWaiters, f)

	return f
}

// NextNegedge returns a future that resolves on the next falling edge.
func (s *Signal) NextNegedge() *sim.Future {
	f := sim.NewFuture()
	s.negedgeWaiters = append(s.negedgeWaiters, f)

	return f
}

func (s *Signal) String() string {
	return fmt.Sprintf("%s=%d(prev %d)", s.name, s.value, s.previous)
}

func (s *Signal) set(v uint64) {
	s.previous = s.value
	s.value = v
	s.notify()
}

// latch is called at the clock edge of the interface the signal belongs to.
// The value before the edge becomes the previous value, and a pending driven
// value, if any, becomes the current value.
func (s *Signal) latch() {
	s.previous = s.value

	if !s.hasPending {
		return
	}

	s.value = s.pending
	s.hasPending = false
	s.notify()
}

func (s *Signal) notify() {
	if s.previous == s.value {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosChange,
		Item:   s,
		Detail: Change{From: s.previous, To: s.value},
	})

	switch {
	case s.previous == 0:
		s.dispatch(s.posedgeListeners, &s.posedgeWaiters)
	case s.value == 0:
		s.dispatch(s.negedgeListeners, &s.negedgeWaiters)
	}
}

func (s *Signal) dispatch(listeners []func(), waiters *[]*sim.Future) {
	for _, l := range listeners {
		l()
	}

	pending := *waiters
	*waiters = nil

	for _, f := range pending {
		f.Resolve()
	}
}

// A Writer is the write access to a signal.
type Writer struct {
	sig   *Signal
	owner string
}

// Signal returns the signal written by the writer.
func (w *Writer) Signal() *Signal {
	return w.sig
}

// Owner returns the name of the component that owns the writer.
func (w *Writer) Owner() string {
	return w.owner
}

// Put updates the signal immediately. Edge listeners and waiters are notified
// at once.
func (w *Writer) Put(v uint64) {
	w.sig.set(v)
}

// Drive requests a synchronized update. The value is applied when the clock
// of the owning Interface rises next. A later Drive before that edge
// replaces the earlier one.
func (w *Writer) Drive(v uint64) {
	w.sig.pending = v
	w.sig.hasPending = true
}
