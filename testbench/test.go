package testbench

import (
	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// TestOptions controls the reset schedule and the stimulus of a CounterTest.
type TestOptions struct {
	ResetAssert   sim.VTime
	ResetDeassert sim.VTime
	Settle        sim.VTime
	Repeats       int

	// HoldObjection keeps the test objection raised forever, so that the run
	// can only end at the ceiling.
	HoldObjection bool
}

// CounterTest resets the counter and sends a burst of enable pulses. It owns
// the reset signal.
type CounterTest struct {
	name    string
	kernel  *sim.Kernel
	env     *Env
	ifc     *signal.Interface
	reset   *signal.Writer
	tracker *phase.ObjectionTracker
	opts    TestOptions
}

// NewCounterTest creates a test on the environment.
func NewCounterTest(
	name string,
	kernel *sim.Kernel,
	env *Env,
	ifc *signal.Interface,
	tracker *phase.ObjectionTracker,
	opts TestOptions,
) *CounterTest {
	return &CounterTest{
		name:    name,
		kernel:  kernel,
		env:     env,
		ifc:     ifc,
		reset:   ifc.Reset.Claim(name),
		tracker: tracker,
		opts:    opts,
	}
}

// Name returns the name of the test.
func (t *CounterTest) Name() string {
	return t.name
}

// Build does nothing.
func (t *CounterTest) Build() {}

// Connect does nothing.
func (t *CounterTest) Connect() {}

// Run holds the run phase open while it resets the counter and runs the
// enable pulses.
func (t *CounterTest) Run(p *sim.Process) {
	objection := t.tracker.Raise(phase.PhaseRun, t.name, "test body")

	t.kernel.At(t.opts.ResetAssert, func() { t.reset.Put(1) })
	t.kernel.At(t.opts.ResetDeassert, func() { t.reset.Put(0) })

	seqr := t.env.Agent.Sequencer
	seqr.Add(EnableItem{Enable: false})

	p.Await(t.ifc.Reset.NextNegedge())
	p.Sleep(t.opts.Settle)

	seqr.Start(p, EnablePulseSequence{Repeats: t.opts.Repeats})

	if t.opts.HoldObjection {
		return
	}

	if err := objection.Drop(); err != nil {
		panic(err)
	}
}
