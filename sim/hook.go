package sim

// HookPos names a place where a Hookable invokes its hooks.
type HookPos struct {
	Name string
}

// HookCtx describes one hook invocation. Domain is the object that invoked
// the hook, Item is what the position is about (an event, a sample, a check)
// and Detail carries extra position-specific data.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is an object that accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
}

// Positions invoked by engines around every handled event. The item is the
// event.
var (
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &HookPos{Name: "AfterEvent"}
)

// A Hook observes a Hookable. Hooks must not change the simulation state.
type Hook interface {
	Func(ctx HookCtx)
}

type hookFunc struct {
	fn func(ctx HookCtx)
}

func (h *hookFunc) Func(ctx HookCtx) {
	h.fn(ctx)
}

// NewHookFunc turns a function into a Hook. Every call returns a distinct
// hook, so the same function can be attached twice.
func NewHookFunc(fn func(ctx HookCtx)) Hook {
	return &hookFunc{fn: fn}
}

// HookableBase implements Hookable. Embed it and call InvokeHook.
type HookableBase struct {
	Hooks []Hook
}

// NewHookableBase creates a HookableBase with no hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// AcceptHook attaches a hook. Hooks run in the order they are attached.
// Attaching the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, existing := range h.Hooks {
		if existing == hook {
			panic("duplicated hook")
		}
	}

	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook calls every attached hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
