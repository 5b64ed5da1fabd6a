package signal

import (
	"log"
)

// Names of the signals of an Interface.
const (
	NameClk   = "clk"
	NameReset = "reset"
	NameEn    = "en"
	NameVal   = "val"
)

// An Interface is the set of pins shared between the device under test and
// every testbench component. It is created once and passed by pointer.
//
// On every rising edge of Clk, before any other listener runs, the interface
// latches all the other signals: their current value becomes their previous
// value and driven values take effect. After the edge, Previous() is what a
// register clocked by Clk captured and Value() is the post-edge value.
type Interface struct {
	name  string
	width int

	Clk   *Signal
	Reset *Signal
	En    *Signal
	Val   *Signal

	byName map[string]*Signal
}

// NewInterface creates an interface whose value bus is width bits wide.
func NewInterface(name string, width int) *Interface {
	if width < 1 || width > 63 {
		log.Panicf("interface width must be within [1, 63], got %d", width)
	}

	i := &Interface{
		name:  name,
		width: width,
		Clk:   New(NameClk, 0),
		Reset: New(NameReset, 0),
		En:    New(NameEn, 0),
		Val:   New(NameVal, 0),
	}

	i.byName = map[string]*Signal{
		NameClk:   i.Clk,
		NameReset: i.Reset,
		NameEn:    i.En,
		NameVal:   i.Val,
	}

	i.Clk.OnPosedge(i.latch)

	return i
}

// Name returns the name of the interface.
func (i *Interface) Name() string {
	return i.name
}

// Width returns the width of the value bus.
func (i *Interface) Width() int {
	return i.width
}

// MaxValue returns the largest value the value bus can carry, 2^width - 1.
func (i *Interface) MaxValue() uint64 {
	return (uint64(1) << i.width) - 1
}

// Signal returns the signal with the given name, or nil.
func (i *Interface) Signal(name string) *Signal {
	return i.byName[name]
}

// Signals returns all the signals, clock first.
func (i *Interface) Signals() []*Signal {
	return []*Signal{i.Clk, i.Reset, i.En, i.Val}
}

func (i *Interface) latch() {
	i.Reset.latch()
	i.En.latch()
	i.Val.latch()
}
