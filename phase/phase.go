// Package phase implements the run lifecycle of a testbench: the phases,
// the objections that keep the run phase alive, and the controller that
// walks a set of components through the phases.
package phase

import "fmt"

// Phase is a stage of the testbench lifecycle.
type Phase int

// The phases, in the order they are entered.
const (
	PhaseBuild Phase = iota
	PhaseConnect
	PhaseRun
	PhaseReport
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseBuild:
		return "build"
	case PhaseConnect:
		return "connect"
	case PhaseRun:
		return "run"
	case PhaseReport:
		return "report"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
