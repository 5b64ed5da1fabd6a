// Package scoreboard predicts the counter value from the observed enable and
// compares the prediction against the observed value.
package scoreboard

import (
	"fmt"
	"sync"

	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/sampling"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// Hook positions of the scoreboard. The item of the hook context is a Check.
var (
	HookPosBaseline = &sim.HookPos{Name: "ScoreboardBaseline"}
	HookPosMatch    = &sim.HookPos{Name: "ScoreboardMatch"}
	HookPosMismatch = &sim.HookPos{Name: "ScoreboardMismatch"}
)

// A Check is the outcome of one evaluation of the scoreboard.
type Check struct {
	Time     sim.VTime
	Expected uint64
	Observed uint64
	Enabled  bool
	Match    bool
}

func (c Check) String() string {
	return fmt.Sprintf("@%d expected %d, observed %d (enable %t)",
		c.Time, c.Expected, c.Observed, c.Enabled)
}

// A Mismatch is a check whose prediction was wrong.
type Mismatch = Check

// Stats summarizes the checks done so far.
type Stats struct {
	Checks     int
	Matches    int
	Mismatches int
}

// A Scoreboard receives enable and value samples and checks them once per
// cycle, on the falling clock edge.
//
// A sample that arrives while the previous one of its kind has not been
// checked, or a cycle that delivered only one of the two samples, means the
// samples are out of order. The scoreboard panics with an ordering RunError
// in that case.
type Scoreboard struct {
	sim.HookableBase

	name     string
	clk      *signal.Signal
	maxValue uint64

	lock       sync.Mutex
	hasCurrent bool
	current    uint64
	hasEnable  bool
	enabled    bool
	hasPrev    bool
	previous   uint64
	stats      Stats
	mismatches []Mismatch
}

// New creates a scoreboard for a counter that wraps after maxValue.
func New(name string, clk *signal.Signal, maxValue uint64) *Scoreboard {
	return &Scoreboard{
		name:     name,
		clk:      clk,
		maxValue: maxValue,
	}
}

// Name returns the name of the scoreboard.
func (s *Scoreboard) Name() string {
	return s.name
}

// WriteEnable receives an enable sample.
func (s *Scoreboard) WriteEnable(sample sampling.Sample[bool]) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.hasEnable {
		panic(phase.NewRunError(phase.KindOrdering,
			"%s: second enable sample at %d before a check", s.name, sample.Time))
	}

	s.hasEnable = true
	s.enabled = sample.Value
}

// WriteValue receives a value sample.
func (s *Scoreboard) WriteValue(sample sampling.Sample[uint64]) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.hasCurrent {
		panic(phase.NewRunError(phase.KindOrdering,
			"%s: second value sample at %d before a check", s.name, sample.Time))
	}

	s.hasCurrent = true
	s.current = sample.Value
}

// Build does nothing.
func (s *Scoreboard) Build() {}

// Connect does nothing.
func (s *Scoreboard) Connect() {}

// Run checks once per cycle on the falling edge of the clock.
func (s *Scoreboard) Run(p *sim.Process) {
	for {
		p.Await(s.clk.NextNegedge())
		s.check(p.Now())
	}
}

// Report returns a mismatch error if any check has failed.
func (s *Scoreboard) Report() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.mismatches) == 0 {
		return nil
	}

	first := s.mismatches[0]

	return phase.NewRunError(phase.KindMismatch,
		"%s: %d mismatches, first %s", s.name, len(s.mismatches), first)
}

// Stats returns the counts of checks so far.
func (s *Scoreboard) Stats() Stats {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.stats
}

// Mismatches returns the failed checks in the order they happened.
func (s *Scoreboard) Mismatches() []Mismatch {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := make([]Mismatch, len(s.mismatches))
	copy(list, s.mismatches)

	return list
}

// Predict returns the value the counter should hold one cycle after prev,
// given whether the design saw the enable.
func (s *Scoreboard) Predict(prev uint64, enabled bool) uint64 {
	if !enabled {
		return prev
	}

	if prev >= s.maxValue {
		return 0
	}

	return prev + 1
}

func (s *Scoreboard) check(now sim.VTime) {
	s.lock.Lock()

	if s.hasCurrent != s.hasEnable {
		hasEnable := s.hasEnable
		s.lock.Unlock()

		if hasEnable {
			panic(phase.NewRunError(phase.KindOrdering,
				"%s: enable sample without a value at %d", s.name, now))
		}

		panic(phase.NewRunError(phase.KindOrdering,
			"%s: value sample without an enable at %d", s.name, now))
	}

	if !s.hasCurrent {
		s.lock.Unlock()
		return
	}

	c := Check{
		Time:     now,
		Observed: s.current,
		Enabled:  s.enabled,
	}
	baseline := !s.hasPrev

	if !baseline {
		c.Expected = s.Predict(s.previous, c.Enabled)
		c.Match = c.Expected == c.Observed

		s.stats.Checks++
		if c.Match {
			s.stats.Matches++
		} else {
			s.stats.Mismatches++
			s.mismatches = append(s.mismatches, c)
		}
	}

	s.previous = s.current
	s.hasPrev = true
	s.hasCurrent = false
	s.hasEnable = false
	s.enabled = false

	s.lock.Unlock()

	switch {
	case baseline:
		c.Expected = c.Observed
		s.InvokeHook(sim.HookCtx{Domain: s, Pos: HookPosBaseline, Item: c})
	case c.Match:
		s.InvokeHook(sim.HookCtx{Domain: s, Pos: HookPosMatch, Item: c})
	default:
		s.InvokeHook(sim.HookCtx{Domain: s, Pos: HookPosMismatch, Item: c})
	}
}
