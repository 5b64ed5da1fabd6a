// Package testbench assembles the counter testbench: an agent that drives and
// observes the counter interface, an environment that checks it, the test that
// orchestrates reset and stimulus, and a Bench that builds all of it from a
// configuration.
package testbench

import (
	"github.com/sarchlab/tbkit/sequencing"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// EnableItem requests a level on the enable pin.
type EnableItem struct {
	Enable bool
}

func (i EnableItem) String() string {
	if i.Enable {
		return "enable"
	}

	return "disable"
}

// EnablePulseSequence emits Repeats pairs of enable and disable items.
type EnablePulseSequence struct {
	Repeats int
}

// Body adds the items.
func (s EnablePulseSequence) Body(
	_ *sim.Process,
	seqr *sequencing.Sequencer[EnableItem],
) {
	for i := 0; i < s.Repeats; i++ {
		seqr.Add(EnableItem{Enable: true})
		seqr.Add(EnableItem{Enable: false})
	}
}

// enablePins drives enable items onto the enable signal.
type enablePins struct {
	en *signal.Writer
}

func (p enablePins) DriveItem(item EnableItem) {
	if item.Enable {
		p.en.Drive(1)
		return
	}

	p.en.Drive(0)
}
