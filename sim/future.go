package sim

// A Future is a one-shot notification. It starts unresolved and becomes
// resolved exactly once. Callbacks run synchronously inside Resolve, in the
// order they were registered.
//
// Futures are only touched from the goroutine that currently owns the
// simulation (an event handler or a running process), so they carry no lock.
type Future struct {
	resolved  bool
	callbacks []func()
}

// NewFuture creates an unresolved Future.
func NewFuture() *Future {
	return &Future{}
}

// Resolved tells if Resolve has been called.
func (f *Future) Resolved() bool {
	return f.resolved
}

// Resolve marks the future resolved and runs the callbacks. Later calls are
// no-ops.
func (f *Future) Resolve() {
	if f.resolved {
		return
	}

	f.resolved = true

	callbacks := f.callbacks
	f.callbacks = nil

	for _, cb := range callbacks {
		cb()
	}
}

// OnResolve registers a callback. If the future is already resolved, the
// callback runs immediately.
func (f *Future) OnResolve(cb func()) {
	if f.resolved {
		cb()
		return
	}

	f.callbacks = append(f.callbacks, cb)
}
