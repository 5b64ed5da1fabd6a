package testbench

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/tbkit/config"
	"github.com/sarchlab/tbkit/datarecording"
	"github.com/sarchlab/tbkit/dut"
	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/sampling"
	"github.com/sarchlab/tbkit/scoreboard"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

// VerdictTable is the table the verdict of a run is recorded into.
const VerdictTable = "run_verdict"

// VerdictEntry is the row written into the verdict table.
type VerdictEntry struct {
	RunID      string
	Verdict    string
	EndTime    uint64
	Checks     int
	Mismatches int
	Error      string
}

// A TraceEntry pairs the value and enable samples taken on one edge.
type TraceEntry struct {
	Time   sim.VTime
	Value  uint64
	Enable bool
}

// Bench is a complete counter testbench.
type Bench struct {
	// RunID tags the recorded rows of this run.
	RunID string

	Engine     *sim.SerialEngine
	Kernel     *sim.Kernel
	Interface  *signal.Interface
	Clock      *signal.Clock
	Counter    *dut.Counter
	Env        *Env
	Test       *CounterTest
	Controller *phase.Controller

	recorder datarecording.DataRecorder
	values   []sampling.Sample[uint64]
	enables  []sampling.Sample[bool]
}

// A BenchOption customizes a Bench.
type BenchOption func(b *benchBuilder)

type benchBuilder struct {
	counterOpts []dut.Option
	logger      *log.Logger
	logLevel    sim.LogLevel
	recorder    datarecording.DataRecorder
}

// WithCounterOptions passes options to the counter.
func WithCounterOptions(opts ...dut.Option) BenchOption {
	return func(b *benchBuilder) {
		b.counterOpts = append(b.counterOpts, opts...)
	}
}

// WithLogger prints the lifecycle and the scoreboard checks at or above
// level. At trace level every event is printed too.
func WithLogger(logger *log.Logger, level sim.LogLevel) BenchOption {
	return func(b *benchBuilder) {
		b.logger = logger
		b.logLevel = level
	}
}

// WithRecorder records every scoreboard check and the verdict.
func WithRecorder(recorder datarecording.DataRecorder) BenchOption {
	return func(b *benchBuilder) {
		b.recorder = recorder
	}
}

// NewBench builds a testbench from a configuration.
func NewBench(cfg config.Config, opts ...BenchOption) (*Bench, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder := benchBuilder{}
	for _, o := range opts {
		o(&builder)
	}

	b := &Bench{
		RunID:    sim.GetIDGenerator().Generate(),
		Engine:   sim.NewSerialEngine(),
		recorder: builder.recorder,
	}
	b.Kernel = sim.NewKernel(b.Engine)
	b.Interface = signal.NewInterface("CounterIf", cfg.Width)
	b.Clock = signal.NewClock("Clock", b.Engine, b.Interface.Clk,
		sim.VTime(cfg.Period))
	b.Counter = dut.NewCounter("Counter", b.Interface, builder.counterOpts...)

	tracker := phase.NewObjectionTracker()
	b.Env = NewEnv("Env", b.Kernel, b.Interface, tracker)
	b.Test = NewCounterTest("Test", b.Kernel, b.Env, b.Interface, tracker,
		TestOptions{
			ResetAssert:   sim.VTime(cfg.ResetAssert),
			ResetDeassert: sim.VTime(cfg.ResetDeassert),
			Settle:        sim.VTime(cfg.Settle),
			Repeats:       cfg.Repeats,
			HoldObjection: cfg.HoldObjection,
		})

	b.Controller = phase.MakeBuilder().
		WithKernel(b.Kernel).
		WithTracker(tracker).
		WithCeiling(sim.VTime(cfg.Ceiling)).
		WithDrainTime(sim.VTime(cfg.Drain)).
		Build("Controller")

	for _, c := range b.Env.Components() {
		b.Controller.Register(c)
	}
	b.Controller.Register(b.Test)

	b.Env.Agent.ValueMonitor.Subscribe(func(s sampling.Sample[uint64]) {
		b.values = append(b.values, s)
	})
	b.Env.Agent.EnableMonitor.Subscribe(func(s sampling.Sample[bool]) {
		b.enables = append(b.enables, s)
	})

	b.attachLogger(builder.logger, builder.logLevel, tracker)

	if b.recorder != nil {
		b.Env.Scoreboard.AcceptHook(
			scoreboard.NewCheckRecorder(b.recorder, b.RunID))
	}

	return b, nil
}

func (b *Bench) attachLogger(
	logger *log.Logger,
	level sim.LogLevel,
	tracker *phase.ObjectionTracker,
) {
	if logger == nil {
		return
	}

	lifecycle := phase.NewLifecycleLogger(logger, level, b.Engine)
	b.Controller.AcceptHook(lifecycle)
	tracker.AcceptHook(lifecycle)

	b.Env.Scoreboard.AcceptHook(scoreboard.NewCheckLogger(logger, level))

	if level == sim.LogLevelTrace {
		b.Engine.AcceptHook(sim.NewEventLogger(logger, level))
	}
}

// Run starts the clock and runs all the phases.
func (b *Bench) Run() phase.Result {
	b.Clock.Start()

	result := b.Controller.Run()

	if b.recorder != nil {
		b.recordVerdict(result)
	}

	return result
}

func (b *Bench) recordVerdict(result phase.Result) {
	stats := b.Env.Scoreboard.Stats()

	entry := VerdictEntry{
		RunID:      b.RunID,
		Verdict:    result.Verdict.String(),
		EndTime:    uint64(result.EndTime),
		Checks:     stats.Checks,
		Mismatches: stats.Mismatches,
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
	}

	b.recorder.CreateTable(VerdictTable, VerdictEntry{})
	b.recorder.InsertData(VerdictTable, entry)
	b.recorder.Flush()
}

// ObservedValues returns every value the value monitor reported, in order.
func (b *Bench) ObservedValues() []uint64 {
	values := make([]uint64, len(b.values))
	for i, s := range b.values {
		values[i] = s.Value
	}

	return values
}

// Trace returns the value and enable samples edge by edge.
func (b *Bench) Trace() []TraceEntry {
	n := min(len(b.values), len(b.enables))

	trace := make([]TraceEntry, n)
	for i := 0; i < n; i++ {
		trace[i] = TraceEntry{
			Time:   b.values[i].Time,
			Value:  b.values[i].Value,
			Enable: b.enables[i].Value,
		}
	}

	return trace
}

// WriteTrace prints the trace, one edge per line.
func (b *Bench) WriteTrace(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "# time value enable"); err != nil {
		return err
	}

	for _, e := range b.Trace() {
		en := 0
		if e.Enable {
			en = 1
		}

		if _, err := fmt.Fprintf(w, "%d %d %d\n", e.Time, e.Value, en); err != nil {
			return err
		}
	}

	return nil
}

// Mismatches returns the failed scoreboard checks.
func (b *Bench) Mismatches() []scoreboard.Mismatch {
	return b.Env.Scoreboard.Mismatches()
}
