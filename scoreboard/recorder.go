package scoreboard

import (
	"github.com/sarchlab/tbkit/datarecording"
	"github.com/sarchlab/tbkit/sim"
)

// ChecksTable is the table CheckRecorder writes into.
const ChecksTable = "scoreboard_checks"

// CheckEntry is a row of the checks table.
type CheckEntry struct {
	RunID      string
	Scoreboard string
	Time       uint64
	Expected   uint64
	Observed   uint64
	Enabled    bool
	Match      bool
	Baseline   bool
}

// CheckRecorder writes every scoreboard check into a DataRecorder.
type CheckRecorder struct {
	recorder datarecording.DataRecorder
	runID    string
}

// NewCheckRecorder creates the checks table and returns the hook. Every row
// carries runID so that runs sharing a database can be told apart.
func NewCheckRecorder(
	recorder datarecording.DataRecorder,
	runID string,
) *CheckRecorder {
	recorder.CreateTable(ChecksTable, CheckEntry{})

	return &CheckRecorder{recorder: recorder, runID: runID}
}

// Func records the check.
func (r *CheckRecorder) Func(ctx sim.HookCtx) {
	c, ok := ctx.Item.(Check)
	if !ok {
		return
	}

	name := ""
	if d, ok := ctx.Domain.(sim.Named); ok {
		name = d.Name()
	}

	r.recorder.InsertData(ChecksTable, CheckEntry{
		RunID:      r.runID,
		Scoreboard: name,
		Time:       uint64(c.Time),
		Expected:   c.Expected,
		Observed:   c.Observed,
		Enabled:    c.Enabled,
		Match:      c.Match || ctx.Pos == HookPosBaseline,
		Baseline:   ctx.Pos == HookPosBaseline,
	})
}
