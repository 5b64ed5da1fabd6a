package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type timedEntry struct {
	t    VTime
	what string
}

var _ = Describe("Kernel", func() {
	var (
		engine *SerialEngine
		kernel *Kernel
		trace  []timedEntry
	)

	record := func(p *Process, what string) {
		trace = append(trace, timedEntry{t: p.Now(), what: what})
	}

	BeforeEach(func() {
		engine = NewSerialEngine()
		kernel = NewKernel(engine)
		trace = nil
	})

	AfterEach(func() {
		kernel.Shutdown()
	})

	It("should run processes until they suspend", func() {
		kernel.Spawn("a", func(p *Process) {
			record(p, "a0")
			p.Sleep(5)
			record(p, "a5")
		})
		kernel.Spawn("b", func(p *Process) {
			record(p, "b0")
			p.Sleep(2)
			record(p, "b2")
			p.Sleep(10)
			record(p, "b12")
		})

		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]timedEntry{
			{0, "a0"}, {0, "b0"}, {2, "b2"}, {5, "a5"}, {12, "b12"},
		}))
		Expect(kernel.NumLiveProcesses()).To(Equal(0))
	})

	It("should resume waiters in resolve order", func() {
		f := NewFuture()

		for _, name := range []string{"w1", "w2", "w3"} {
			name := name
			kernel.Spawn(name, func(p *Process) {
				p.Await(f)
				record(p, name)
			})
		}

		kernel.At(7, f.Resolve)

		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]timedEntry{
			{7, "w1"}, {7, "w2"}, {7, "w3"},
		}))
	})

	It("should not suspend on a resolved future", func() {
		f := NewFuture()
		f.Resolve()

		kernel.Spawn("p", func(p *Process) {
			p.Await(f)
			record(p, "done")
		})

		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]timedEntry{{0, "done"}}))
	})

	It("should let a parent wait for a child", func() {
		kernel.Spawn("parent", func(p *Process) {
			child := kernel.Spawn("child", func(c *Process) {
				c.Sleep(3)
				record(c, "child")
			})

			p.Await(child.Done())
			record(p, "parent")
		})

		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]timedEntry{{3, "child"}, {3, "parent"}}))
	})

	It("should release suspended processes on shutdown", func() {
		reachedEnd := false
		cleanedUp := false

		kernel.Spawn("stuck", func(p *Process) {
			defer func() { cleanedUp = true }()
			p.Await(NewFuture())
			reachedEnd = true
		})
		kernel.AtSecondary(0, engine.Terminate)

		Expect(engine.Run()).To(Succeed())
		Expect(kernel.NumLiveProcesses()).To(Equal(1))

		kernel.Shutdown()

		Expect(reachedEnd).To(BeFalse())
		Expect(cleanedUp).To(BeTrue())
		Expect(kernel.NumLiveProcesses()).To(Equal(0))
	})

	It("should re-raise panics from processes", func() {
		kernel.Spawn("faulty", func(p *Process) {
			p.Sleep(1)
			panic("boom")
		})

		Expect(func() { _ = engine.Run() }).To(PanicWith("boom"))
	})

	It("should run timed actions in scheduling order", func() {
		kernel.At(4, func() { trace = append(trace, timedEntry{4, "first"}) })
		kernel.At(4, func() { trace = append(trace, timedEntry{4, "second"}) })
		kernel.AtSecondary(4, func() {
			trace = append(trace, timedEntry{4, "secondary"})
		})
		kernel.At(4, func() { trace = append(trace, timedEntry{4, "third"}) })

		Expect(engine.Run()).To(Succeed())
		Expect(trace).To(Equal([]timedEntry{
			{4, "first"}, {4, "second"}, {4, "third"}, {4, "secondary"},
		}))
	})
})

var _ = Describe("Future", func() {
	It("should run callbacks once, in order", func() {
		f := NewFuture()
		calls := []int{}

		f.OnResolve(func() { calls = append(calls, 1) })
		f.OnResolve(func() { calls = append(calls, 2) })
		f.Resolve()
		f.Resolve()
		f.OnResolve(func() { calls = append(calls, 3) })

		Expect(f.Resolved()).To(BeTrue())
		Expect(calls).To(Equal([]int{1, 2, 3}))
	})
})
