package phase

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/tbkit/sim"
)

// Hook positions of the controller. Phase hooks carry the Phase as the item;
// HookPosRunEnd carries the Result.
var (
	HookPosPhaseStart = &sim.HookPos{Name: "PhaseStart"}
	HookPosPhaseEnd   = &sim.HookPos{Name: "PhaseEnd"}
	HookPosRunEnd     = &sim.HookPos{Name: "RunEnd"}
)

// A Component takes part in the lifecycle. Build and Connect are called in
// registration order. Run is started as a process at the beginning of the
// run phase.
type Component interface {
	sim.Named

	Build()
	Connect()
	Run(p *sim.Process)
}

// A Reporter is a component that has a verdict of its own to contribute once
// the run phase ends.
type Reporter interface {
	Report() error
}

// Verdict is the final outcome of a run.
type Verdict int

// The verdicts.
const (
	VerdictPassed Verdict = iota
	VerdictFailed
	VerdictTimeout
	VerdictObjectionMisuse
)

func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "PASSED"
	case VerdictFailed:
		return "FAILED"
	case VerdictTimeout:
		return "TIMEOUT"
	case VerdictObjectionMisuse:
		return "OBJECTION_MISUSE"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Result summarizes a run.
type Result struct {
	Verdict Verdict
	EndTime sim.VTime

	// Err explains a verdict other than VerdictPassed. It is a *RunError, or
	// an aggregate of the errors returned by the reporters.
	Err error

	// ReportErrors are the errors returned by the reporters.
	ReportErrors []error
}

// Passed tells if the run passed.
func (r Result) Passed() bool {
	return r.Verdict == VerdictPassed
}

// Controller walks the registered components through the phases. The run
// phase ends when no run-phase objection has been held for the drain time,
// when an objection is misused, or when the simulation ceiling is reached.
type Controller struct {
	sim.HookableBase

	name       string
	kernel     *sim.Kernel
	tracker    *ObjectionTracker
	ceiling    sim.VTime
	drain      sim.VTime
	components []Component

	phase     Phase
	zeroEpoch uint64
	ended     bool
	result    Result
}

// Name returns the name of the controller.
func (c *Controller) Name() string {
	return c.name
}

// Tracker returns the objection tracker used by the controller.
func (c *Controller) Tracker() *ObjectionTracker {
	return c.tracker
}

// Kernel returns the kernel the run phase executes on.
func (c *Controller) Kernel() *sim.Kernel {
	return c.kernel
}

// CurrentPhase returns the phase the controller is in.
func (c *Controller) CurrentPhase() Phase {
	return c.phase
}

// Ceiling returns the simulation time limit.
func (c *Controller) Ceiling() sim.VTime {
	return c.ceiling
}

// Register adds a component. Components must be registered before Run.
func (c *Controller) Register(comp Component) {
	c.components = append(c.components, comp)
}

// Components returns the registered components.
func (c *Controller) Components() []Component {
	return c.components
}

// Run executes all the phases and returns the result.
func (c *Controller) Run() Result {
	c.enter(PhaseBuild)
	for _, comp := range c.components {
		comp.Build()
	}
	c.leave(PhaseBuild)

	c.enter(PhaseConnect)
	for _, comp := range c.components {
		comp.Connect()
	}
	c.leave(PhaseConnect)

	c.enter(PhaseRun)
	c.runPhase()
	c.leave(PhaseRun)

	c.enter(PhaseReport)
	c.reportPhase()
	c.leave(PhaseReport)

	c.enter(PhaseEnded)
	c.kernel.Engine().Finished()

	c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosRunEnd, Item: c.result})

	return c.result
}

func (c *Controller) enter(p Phase) {
	c.phase = p
	c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosPhaseStart, Item: p})
}

func (c *Controller) leave(p Phase) {
	c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosPhaseEnd, Item: p})
}

func (c *Controller) runPhase() {
	defer c.kernel.Shutdown()

	engine := c.kernel.Engine()
	if c.ceiling < engine.CurrentTime() {
		panic("simulation ceiling is earlier than the start of the run phase")
	}

	for _, comp := range c.components {
		c.kernel.Spawn(comp.Name(), comp.Run)
	}

	c.scheduleEndCheck()
	c.kernel.AtSecondary(c.ceiling, c.hitCeiling)

	if err := c.runEngine(); err != nil {
		c.finish(VerdictFailed, err)
	}

	if !c.ended {
		c.finish(VerdictFailed, errors.New("simulation ran out of events"))
	}
}

// runEngine runs the engine. A component that panics with a *RunError aborts
// the run with that error. Any other panic is not ours to handle.
func (c *Controller) runEngine() (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		runErr, ok := r.(*RunError)
		if !ok {
			panic(r)
		}

		err = runErr
	}()

	return c.kernel.Engine().Run()
}

func (c *Controller) objectionCountChanged(p Phase, count int) {
	if p != PhaseRun || c.phase != PhaseRun || c.ended {
		return
	}

	c.zeroEpoch++

	if count == 0 {
		c.scheduleEndCheck()
	}
}

// scheduleEndCheck ends the run phase after the drain time unless an
// objection is raised in between.
func (c *Controller) scheduleEndCheck() {
	epoch := c.zeroEpoch
	at := c.kernel.Now() + c.drain

	c.kernel.AtSecondary(at, func() {
		if c.ended || epoch != c.zeroEpoch {
			return
		}

		if c.tracker.Count(PhaseRun) == 0 {
			c.finish(VerdictPassed, nil)
		}
	})
}

func (c *Controller) objectionMisused(err error) {
	if c.phase != PhaseRun || c.ended {
		return
	}

	c.finish(VerdictObjectionMisuse, err)
}

// hitCeiling ends the run at the ceiling. Reaching the ceiling is a timeout
// only if run-phase objections are still outstanding; a run that is draining
// or whose last objection dropped on the ceiling tick passes.
func (c *Controller) hitCeiling() {
	if c.ended {
		return
	}

	if c.tracker.Count(PhaseRun) == 0 {
		c.finish(VerdictPassed, nil)
		return
	}

	outstanding := c.tracker.Outstanding(PhaseRun)
	names := make([]string, 0, len(outstanding))
	for _, o := range outstanding {
		names = append(names, o.Owner+"("+o.Reason+")")
	}

	c.finish(VerdictTimeout, NewRunError(KindTimeout,
		"simulation ceiling %d reached with %d outstanding objection(s): %s",
		c.ceiling, len(outstanding), strings.Join(names, ", ")))
}

func (c *Controller) finish(v Verdict, err error) {
	if c.ended {
		return
	}

	c.ended = true
	c.result = Result{
		Verdict: v,
		EndTime: c.kernel.Now(),
		Err:     err,
	}

	c.kernel.Engine().Terminate()
}

func (c *Controller) reportPhase() {
	for _, comp := range c.components {
		reporter, ok := comp.(Reporter)
		if !ok {
			continue
		}

		if err := reporter.Report(); err != nil {
			c.result.ReportErrors = append(c.result.ReportErrors, err)
		}
	}

	if c.result.Verdict != VerdictPassed || len(c.result.ReportErrors) == 0 {
		return
	}

	c.result.Verdict = VerdictFailed
	c.result.Err = joinErrors(c.result.ReportErrors)
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}

	return errors.Errorf("%d reporters failed: %s",
		len(errs), strings.Join(msgs, "; "))
}

// A Builder creates controllers.
type Builder struct {
	kernel  *sim.Kernel
	tracker *ObjectionTracker
	ceiling sim.VTime
	drain   sim.VTime
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		ceiling: 1_000_000,
	}
}

// WithKernel sets the kernel that runs the run phase.
func (b Builder) WithKernel(k *sim.Kernel) Builder {
	b.kernel = k
	return b
}

// WithTracker sets the objection tracker. A new tracker is created if not
// set.
func (b Builder) WithTracker(t *ObjectionTracker) Builder {
	b.tracker = t
	return b
}

// WithCeiling sets the simulation time at which the run is forcibly ended.
func (b Builder) WithCeiling(t sim.VTime) Builder {
	b.ceiling = t
	return b
}

// WithDrainTime sets how long the run-phase objection count has to stay at
// zero before the run phase ends.
func (b Builder) WithDrainTime(t sim.VTime) Builder {
	b.drain = t
	return b
}

// Build creates the controller.
func (b Builder) Build(name string) *Controller {
	if b.kernel == nil {
		panic("phase controller requires a kernel")
	}

	tracker := b.tracker
	if tracker == nil {
		tracker = NewObjectionTracker()
	}

	c := &Controller{
		name:    name,
		kernel:  b.kernel,
		tracker: tracker,
		ceiling: b.ceiling,
		drain:   b.drain,
	}

	tracker.OnCountChange(c.objectionCountChanged)
	tracker.OnFault(c.objectionMisused)

	return c
}
