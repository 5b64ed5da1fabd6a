package sequencing

import (
	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// HookPosItemDriven is triggered after the driver drives an item.
var HookPosItemDriven = &sim.HookPos{Name: "ItemDriven"}

// An ItemDriver converts one item into pin assignments.
type ItemDriver[T any] interface {
	DriveItem(item T)
}

// ItemDriverFunc turns a function into an ItemDriver.
type ItemDriverFunc[T any] func(item T)

// DriveItem calls the function.
func (f ItemDriverFunc[T]) DriveItem(item T) {
	f(item)
}

// A Driver takes items from a sequencer and drives one item on every falling
// edge of the clock. It holds a run-phase objection exactly while it has
// items waiting.
type Driver[T any] struct {
	sim.HookableBase

	name      string
	seqr      *Sequencer[T]
	clk       *signal.Signal
	pins      ItemDriver[T]
	tracker   *phase.ObjectionTracker
	pending   []T
	objection *phase.Objection
	numDriven uint64
}

// NewDriver creates a driver.
func NewDriver[T any](
	name string,
	seqr *Sequencer[T],
	clk *signal.Signal,
	pins ItemDriver[T],
	tracker *phase.ObjectionTracker,
) *Driver[T] {
	return &Driver[T]{
		name:    name,
		seqr:    seqr,
		clk:     clk,
		pins:    pins,
		tracker: tracker,
	}
}

// Name returns the name of the driver.
func (d *Driver[T]) Name() string {
	return d.name
}

// Pending returns the number of items waiting to be driven.
func (d *Driver[T]) Pending() int {
	return len(d.pending)
}

// NumDriven returns the number of items driven so far.
func (d *Driver[T]) NumDriven() uint64 {
	return d.numDriven
}

// HasObjection tells if the driver currently holds its objection.
func (d *Driver[T]) HasObjection() bool {
	return d.objection != nil
}

// Build does nothing.
func (d *Driver[T]) Build() {}

// Connect subscribes the driver to its sequencer.
func (d *Driver[T]) Connect() {
	d.seqr.Subscribe(d.receive)
}

// Run drives pending items on falling clock edges.
func (d *Driver[T]) Run(p *sim.Process) {
	for {
		p.Await(d.clk.NextNegedge())
		d.driveNext()
	}
}

func (d *Driver[T]) receive(item T) {
	d.pending = append(d.pending, item)

	if d.objection == nil {
		d.objection = d.tracker.Raise(phase.PhaseRun, d.name, "items pending")
	}
}

func (d *Driver[T]) driveNext() {
	if len(d.pending) == 0 {
		return
	}

	item := d.pending[0]
	d.pending = d.pending[1:]

	d.pins.DriveItem(item)
	d.numDriven++

	d.InvokeHook(sim.HookCtx{Domain: d, Pos: HookPosItemDriven, Item: item})

	if len(d.pending) == 0 {
		objection := d.objection
		d.objection = nil

		if err := objection.Drop(); err != nil {
			panic(err)
		}
	}
}
