package testbench

import (
	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/sampling"
	"github.com/sarchlab/tbkit/sequencing"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// An Agent groups the sequencer, the driver and the monitors of one counter
// interface. The driver owns the enable signal.
type Agent struct {
	Sequencer     *sequencing.Sequencer[EnableItem]
	Driver        *sequencing.Driver[EnableItem]
	ValueMonitor  *sampling.Monitor[uint64]
	EnableMonitor *sampling.Monitor[bool]
}

// NewAgent creates an agent on the interface.
func NewAgent(
	name string,
	kernel *sim.Kernel,
	ifc *signal.Interface,
	tracker *phase.ObjectionTracker,
) *Agent {
	a := &Agent{}

	a.Sequencer = sequencing.NewSequencer[EnableItem](name+".Sequencer", kernel)

	driverName := name + ".Driver"
	a.Driver = sequencing.NewDriver[EnableItem](
		driverName,
		a.Sequencer,
		ifc.Clk,
		enablePins{en: ifc.En.Claim(driverName)},
		tracker,
	)

	a.ValueMonitor = sampling.NewValueMonitor(name+".ValueMonitor", ifc)
	a.EnableMonitor = sampling.NewEnableMonitor(name+".EnableMonitor", ifc)

	return a
}

// Components returns the components of the agent that take part in the
// phases.
func (a *Agent) Components() []phase.Component {
	return []phase.Component{a.Driver, a.ValueMonitor, a.EnableMonitor}
}
