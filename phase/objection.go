package phase

import (
	"fmt"
	"sync"

	"github.com/sarchlab/tbkit/sim"
)

// Hook positions of the objection tracker. The hook item is the *Objection.
var (
	HookPosObjectionRaised  = &sim.HookPos{Name: "ObjectionRaised"}
	HookPosObjectionDropped = &sim.HookPos{Name: "ObjectionDropped"}
	HookPosObjectionMisuse  = &sim.HookPos{Name: "ObjectionMisuse"}
)

// An Objection keeps a phase from ending while it is held.
type Objection struct {
	ID     string
	Phase  Phase
	Owner  string
	Reason string

	tracker *ObjectionTracker
	dropped bool
}

// Drop releases the objection. Dropping an objection that has already been
// dropped returns ErrObjectionNotHeld and is recorded as a fault of the
// tracker.
func (o *Objection) Drop() error {
	return o.tracker.drop(o)
}

// Held tells if the objection has not been dropped yet.
func (o *Objection) Held() bool {
	o.tracker.lock.Lock()
	defer o.tracker.lock.Unlock()

	return !o.dropped
}

func (o *Objection) String() string {
	return fmt.Sprintf("%s(%s) on %s", o.Owner, o.Reason, o.Phase)
}

// An ObjectionTracker counts the outstanding objections of each phase.
type ObjectionTracker struct {
	sim.HookableBase

	lock        sync.Mutex
	outstanding map[Phase][]*Objection
	faults      []error

	changeListeners []func(phase Phase, count int)
	faultListeners  []func(err error)
}

// NewObjectionTracker creates an empty tracker.
func NewObjectionTracker() *ObjectionTracker {
	return &ObjectionTracker{
		outstanding: make(map[Phase][]*Objection),
	}
}

// Name returns the name of the tracker.
func (t *ObjectionTracker) Name() string {
	return "ObjectionTracker"
}

// OnCountChange registers a listener called after every raise and drop.
func (t *ObjectionTracker) OnCountChange(fn func(phase Phase, count int)) {
	t.changeListeners = append(t.changeListeners, fn)
}

// OnFault registers a listener called when an objection is misused.
func (t *ObjectionTracker) OnFault(fn func(err error)) {
	t.faultListeners = append(t.faultListeners, fn)
}

// Raise adds an objection to the phase on behalf of owner.
func (t *ObjectionTracker) Raise(phase Phase, owner, reason string) *Objection {
	o := &Objection{
		ID:      sim.GetIDGenerator().Generate(),
		Phase:   phase,
		Owner:   owner,
		Reason:  reason,
		tracker: t,
	}

	t.lock.Lock()
	t.outstanding[phase] = append(t.outstanding[phase], o)
	count := len(t.outstanding[phase])
	t.lock.Unlock()

	t.InvokeHook(sim.HookCtx{Domain: t, Pos: HookPosObjectionRaised, Item: o})

	for _, l := range t.changeListeners {
		l(phase, count)
	}

	return o
}

func (t *ObjectionTracker) drop(o *Objection) error {
	t.lock.Lock()

	if o.dropped {
		err := WrapRunError(KindObjectionMisuse, ErrObjectionNotHeld,
			"objection %s dropped twice", o)
		t.faults = append(t.faults, err)
		t.lock.Unlock()

		t.InvokeHook(sim.HookCtx{
			Domain: t,
			Pos:    HookPosObjectionMisuse,
			Item:   o,
			Detail: err,
		})

		for _, l := range t.faultListeners {
			l(err)
		}

		return err
	}

	o.dropped = true
	t.outstanding[o.Phase] = removeObjection(t.outstanding[o.Phase], o)
	count := len(t.outstanding[o.Phase])
	t.lock.Unlock()

	t.InvokeHook(sim.HookCtx{Domain: t, Pos: HookPosObjectionDropped, Item: o})

	for _, l := range t.changeListeners {
		l(o.Phase, count)
	}

	return nil
}

func removeObjection(list []*Objection, o *Objection) []*Objection {
	for i, x := range list {
		if x == o {
			return append(list[:i], list[i+1:]...)
		}
	}

	return list
}

// Count returns the number of outstanding objections of the phase.
func (t *ObjectionTracker) Count(phase Phase) int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.outstanding[phase])
}

// Outstanding returns the objections of the phase that are still held, in the
// order they were raised.
func (t *ObjectionTracker) Outstanding(phase Phase) []*Objection {
	t.lock.Lock()
	defer t.lock.Unlock()

	list := make([]*Objection, len(t.outstanding[phase]))
	copy(list, t.outstanding[phase])

	return list
}

// Faults returns the misuses recorded so far.
func (t *ObjectionTracker) Faults() []error {
	t.lock.Lock()
	defer t.lock.Unlock()

	faults := make([]error, len(t.faults))
	copy(faults, t.faults)

	return faults
}
