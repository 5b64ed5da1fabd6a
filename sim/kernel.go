package sim

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// A Kernel runs cooperative processes on top of an Engine.
//
// Every process is backed by a goroutine, but the kernel hands control to
// exactly one of them at a time: the engine goroutine resumes a process and
// blocks until that process suspends in Await or returns. The simulation
// therefore stays single-threaded and deterministic.
type Kernel struct {
	engine Engine

	killed       chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	numLive      atomic.Int64
}

// NewKernel creates a Kernel that schedules on the given engine.
func NewKernel(engine Engine) *Kernel {
	return &Kernel{
		engine: engine,
		killed: make(chan struct{}),
	}
}

// Name returns the name of the kernel.
func (k *Kernel) Name() string {
	return "Kernel"
}

// Engine returns the underlying engine.
func (k *Kernel) Engine() Engine {
	return k.engine
}

// Now returns the current simulation time.
func (k *Kernel) Now() VTime {
	return k.engine.CurrentTime()
}

// NumLiveProcesses returns the number of processes that have not returned.
func (k *Kernel) NumLiveProcesses() int {
	return int(k.numLive.Load())
}

type resumeEvent struct {
	*EventBase
	proc *Process
}

type actionEvent struct {
	*EventBase
	action func()
}

// Handle dispatches the kernel's own events.
func (k *Kernel) Handle(e Event) error {
	switch evt := e.(type) {
	case *resumeEvent:
		k.resume(evt.proc)
	case *actionEvent:
		evt.action()
	default:
		return fmt.Errorf("kernel cannot handle event of type %T", e)
	}

	return nil
}

// At runs the action at the given time, as a primary event.
func (k *Kernel) At(t VTime, action func()) {
	k.engine.Schedule(&actionEvent{
		EventBase: NewEventBase(t, k),
		action:    action,
	})
}

// AtSecondary runs the action at the given time, after all the primary events
// of that time.
func (k *Kernel) AtSecondary(t VTime, action func()) {
	k.engine.Schedule(&actionEvent{
		EventBase: NewSecondaryEventBase(t, k),
		action:    action,
	})
}

// After returns a future that resolves d time units from now.
func (k *Kernel) After(d VTime) *Future {
	f := NewFuture()
	k.At(k.Now()+d, f.Resolve)

	return f
}

// Spawn creates a process. The body starts running at the current time, after
// the events already scheduled for the current time.
func (k *Kernel) Spawn(name string, body func(p *Process)) *Process {
	p := &Process{
		name:   name,
		kernel: k,
		resume: make(chan struct{}),
		yield:  make(chan interface{}),
		done:   NewFuture(),
	}

	k.wg.Add(1)
	k.numLive.Add(1)

	go p.main(body)

	k.scheduleResume(p)

	return p
}

func (k *Kernel) scheduleResume(p *Process) {
	k.engine.Schedule(&resumeEvent{
		EventBase: NewEventBase(k.Now(), k),
		proc:      p,
	})
}

func (k *Kernel) resume(p *Process) {
	if p.finished {
		return
	}

	p.resume <- struct{}{}

	if r := <-p.yield; r != nil {
		panic(r)
	}
}

// Shutdown releases all the processes that are still suspended. They never
// run again. Shutdown must be called after the engine stops running.
func (k *Kernel) Shutdown() {
	k.shutdownOnce.Do(func() { close(k.killed) })
	k.wg.Wait()
}

// A Process is a sequential piece of simulation logic that can suspend.
type Process struct {
	name   string
	kernel *Kernel
	resume chan struct{}
	yield  chan interface{}
	done   *Future

	finished bool
	killed   bool
}

// Name returns the name of the process.
func (p *Process) Name() string {
	return p.name
}

// Kernel returns the kernel that runs the process.
func (p *Process) Kernel() *Kernel {
	return p.kernel
}

// Now returns the current simulation time.
func (p *Process) Now() VTime {
	return p.kernel.Now()
}

// Done returns a future that resolves when the body of the process returns.
func (p *Process) Done() *Future {
	return p.done
}

// Await suspends the process until the future resolves. It returns
// immediately if the future is already resolved. If the kernel shuts down
// while the process is suspended, the process goroutine exits without
// returning from Await.
func (p *Process) Await(f *Future) {
	if f.Resolved() {
		return
	}

	f.OnResolve(func() { p.kernel.scheduleResume(p) })

	p.yield <- nil

	select {
	case <-p.resume:
	case <-p.kernel.killed:
		p.killed = true
		runtime.Goexit()
	}
}

// Sleep suspends the process for d time units.
func (p *Process) Sleep(d VTime) {
	p.Await(p.kernel.After(d))
}

func (p *Process) main(body func(p *Process)) {
	defer p.kernel.wg.Done()
	defer p.kernel.numLive.Add(-1)

	select {
	case <-p.resume:
	case <-p.kernel.killed:
		return
	}

	var panicValue interface{}

	defer func() {
		if p.killed {
			return
		}

		p.finished = true
		if panicValue == nil {
			p.done.Resolve()
		}

		p.yield <- panicValue
	}()

	func() {
		defer func() {
			if r := recover(); r != nil {
				panicValue = r
			}
		}()

		body(p)
	}()
}
