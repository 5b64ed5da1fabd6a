package testbench

import (
	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/scoreboard"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// An Env connects the monitors of an agent to a scoreboard.
type Env struct {
	Agent      *Agent
	Scoreboard *scoreboard.Scoreboard
}

// NewEnv creates the agent and the scoreboard and connects them.
func NewEnv(
	name string,
	kernel *sim.Kernel,
	ifc *signal.Interface,
	tracker *phase.ObjectionTracker,
) *Env {
	e := &Env{
		Agent:      NewAgent(name+".Agent", kernel, ifc, tracker),
		Scoreboard: scoreboard.New(name+".Scoreboard", ifc.Clk, ifc.MaxValue()),
	}

	e.Agent.EnableMonitor.Subscribe(e.Scoreboard.WriteEnable)
	e.Agent.ValueMonitor.Subscribe(e.Scoreboard.WriteValue)

	return e
}

// Components returns all the components of the environment.
func (e *Env) Components() []phase.Component {
	return append(e.Agent.Components(), e.Scoreboard)
}
