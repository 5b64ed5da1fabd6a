// Package sequencing turns stimulus into pin activity. Sequences emit items
// onto a Sequencer, and a Driver pulls them off and drives them, one per
// falling clock edge.
package sequencing

import (
	"log"

	"github.com/sarchlab/tbkit/sim"
)

// HookPosItemAdded is triggered when an item is added to a sequencer. The
// item of the hook context is the sequence item.
var HookPosItemAdded = &sim.HookPos{Name: "ItemAdded"}

// A Sequence is a procedure that emits items onto a sequencer. The body may
// suspend, for example to wait for clock edges between items.
type Sequence[T any] interface {
	Body(p *sim.Process, seqr *Sequencer[T])
}

// SequenceFunc turns a function into a Sequence.
type SequenceFunc[T any] func(p *sim.Process, seqr *Sequencer[T])

// Body calls the function.
func (f SequenceFunc[T]) Body(p *sim.Process, seqr *Sequencer[T]) {
	f(p, seqr)
}

// A Sequencer hands items over to a single consumer in the order they were
// added. Items added before the consumer subscribes are kept and delivered
// when it does.
type Sequencer[T any] struct {
	sim.HookableBase

	name       string
	kernel     *sim.Kernel
	backlog    []T
	subscriber func(item T)
	numAdded   uint64
}

// NewSequencer creates a sequencer that runs sequence bodies on the kernel.
func NewSequencer[T any](name string, kernel *sim.Kernel) *Sequencer[T] {
	return &Sequencer[T]{
		name:   name,
		kernel: kernel,
	}
}

// Name returns the name of the sequencer.
func (s *Sequencer[T]) Name() string {
	return s.name
}

// NumAdded returns how many items have been added so far.
func (s *Sequencer[T]) NumAdded() uint64 {
	return s.numAdded
}

// Backlog returns the number of items waiting for a subscriber.
func (s *Sequencer[T]) Backlog() int {
	return len(s.backlog)
}

// Add appends an item to the stream.
func (s *Sequencer[T]) Add(item T) {
	s.numAdded++

	s.InvokeHook(sim.HookCtx{Domain: s, Pos: HookPosItemAdded, Item: item})

	if s.subscriber == nil {
		s.backlog = append(s.backlog, item)
		return
	}

	s.subscriber(item)
}

// Subscribe sets the consumer of the stream. A sequencer has only one
// consumer.
func (s *Sequencer[T]) Subscribe(fn func(item T)) {
	if s.subscriber != nil {
		log.Panicf("sequencer %s already has a subscriber", s.name)
	}

	s.subscriber = fn

	backlog := s.backlog
	s.backlog = nil

	for _, item := range backlog {
		fn(item)
	}
}

// Start runs the body of the sequence as a child process and returns when the
// body returns.
func (s *Sequencer[T]) Start(p *sim.Process, seq Sequence[T]) {
	child := s.kernel.Spawn(p.Name()+"."+s.name+".seq", func(c *sim.Process) {
		seq.Body(c, s)
	})

	p.Await(child.Done())
}
