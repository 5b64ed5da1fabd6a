package scoreboard

import (
	"log"

	"github.com/sarchlab/tbkit/sim"
)

// CheckLogger prints the result of every scoreboard check.
type CheckLogger struct {
	sim.LogHookBase
}

// NewCheckLogger creates a CheckLogger. Matches are logged at trace level and
// mismatches at severe level.
func NewCheckLogger(logger *log.Logger, level sim.LogLevel) *CheckLogger {
	h := new(CheckLogger)
	h.Logger = logger
	h.Level = level

	return h
}

// Func writes the check.
func (h *CheckLogger) Func(ctx sim.HookCtx) {
	c, ok := ctx.Item.(Check)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosBaseline:
		h.Logf(sim.LogLevelTrace, "%d: baseline value %d", c.Time, c.Observed)
	case HookPosMatch:
		h.Logf(sim.LogLevelTrace, "%d: value %d matches expected %d",
			c.Time, c.Observed, c.Expected)
	case HookPosMismatch:
		h.Logf(sim.LogLevelSevere, "%d: MISMATCH expected %d, observed %d",
			c.Time, c.Expected, c.Observed)
	}
}
