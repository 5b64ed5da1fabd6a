package phase

import (
	"log"

	"github.com/sarchlab/tbkit/sim"
)

// LifecycleLogger prints phase transitions, objection activity and the final
// verdict. Attach it to both the Controller and the ObjectionTracker.
type LifecycleLogger struct {
	sim.LogHookBase

	timeTeller sim.TimeTeller
}

// NewLifecycleLogger creates a LifecycleLogger.
func NewLifecycleLogger(
	logger *log.Logger,
	level sim.LogLevel,
	timeTeller sim.TimeTeller,
) *LifecycleLogger {
	h := new(LifecycleLogger)
	h.Logger = logger
	h.Level = level
	h.timeTeller = timeTeller

	return h
}

// Func prints the hook context.
func (h *LifecycleLogger) Func(ctx sim.HookCtx) {
	now := h.timeTeller.CurrentTime()

	switch ctx.Pos {
	case HookPosPhaseStart:
		h.Logf(sim.LogLevelInfo, "%d: phase %s started", now, ctx.Item)
	case HookPosPhaseEnd:
		h.Logf(sim.LogLevelTrace, "%d: phase %s ended", now, ctx.Item)
	case HookPosObjectionRaised:
		h.Logf(sim.LogLevelTrace, "%d: objection raised by %s", now, ctx.Item)
	case HookPosObjectionDropped:
		h.Logf(sim.LogLevelTrace, "%d: objection dropped by %s", now, ctx.Item)
	case HookPosObjectionMisuse:
		h.Logf(sim.LogLevelSevere, "%d: %v", now, ctx.Detail)
	case HookPosRunEnd:
		h.logResult(ctx.Item.(Result))
	}
}

func (h *LifecycleLogger) logResult(r Result) {
	if r.Passed() {
		h.Logf(sim.LogLevelInfo, "%d: run %s", r.EndTime, r.Verdict)
		return
	}

	h.Logf(sim.LogLevelSevere, "%d: run %s: %v", r.EndTime, r.Verdict, r.Err)
}
