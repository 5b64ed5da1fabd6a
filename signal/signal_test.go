package signal

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tbkit/sim"
)

var _ = Describe("Signal", func() {
	var (
		sig *Signal
		w   *Writer
	)

	BeforeEach(func() {
		sig = New("s", 0)
		w = sig.Claim("test")
	})

	It("should update immediately on put", func() {
		w.Put(3)

		Expect(sig.Value()).To(Equal(uint64(3)))
		Expect(sig.Previous()).To(Equal(uint64(0)))
		Expect(sig.IsHigh()).To(BeTrue())
	})

	It("should notify listeners before waiters", func() {
		order := []string{}
		sig.OnPosedge(func() { order = append(order, "listener") })

		f := sig.NextPosedge()
		f.OnResolve(func() { order = append(order, "waiter") })

		w.Put(1)

		Expect(order).To(Equal([]string{"listener", "waiter"}))
	})

	It("should resolve a waiter only once", func() {
		rising := 0
		sig.OnPosedge(func() { rising++ })
		f := sig.NextPosedge()

		w.Put(1)
		w.Put(0)
		w.Put(1)

		Expect(f.Resolved()).To(BeTrue())
		Expect(rising).To(Equal(2))
	})

	It("should tell rising from falling", func() {
		falling := 0
		rising := 0
		sig.OnPosedge(func() { rising++ })
		sig.OnNegedge(func() { falling++ })

		w.Put(2)
		w.Put(5)
		w.Put(0)

		Expect(rising).To(Equal(1))
		Expect(falling).To(Equal(1))
	})

	It("should not apply driven values before the latch", func() {
		w.Drive(1)

		Expect(sig.Value()).To(Equal(uint64(0)))
		Expect(sig.HasPending()).To(BeTrue())

		sig.latch()

		Expect(sig.Value()).To(Equal(uint64(1)))
		Expect(sig.Previous()).To(Equal(uint64(0)))
		Expect(sig.HasPending()).To(BeFalse())
	})

	It("should forget the previous value at a latch without drive", func() {
		w.Put(4)
		sig.latch()

		Expect(sig.Value()).To(Equal(uint64(4)))
		Expect(sig.Previous()).To(Equal(uint64(4)))
	})

	It("should refuse a second writer", func() {
		Expect(func() { sig.Claim("other") }).To(Panic())
		Expect(sig.Owner()).To(Equal("test"))
	})

	It("should report changes to hooks", func() {
		var changes []Change
		sig.AcceptHook(sim.NewHookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosChange {
				changes = append(changes, ctx.Detail.(Change))
			}
		}))

		w.Put(1)
		w.Put(1)
		w.Put(0)

		Expect(changes).To(Equal([]Change{{From: 0, To: 1}, {From: 1, To: 0}}))
	})
})

var _ = Describe("Interface", func() {
	var (
		ifc   *Interface
		clk   *Writer
		en    *Writer
		reset *Writer
	)

	BeforeEach(func() {
		ifc = NewInterface("ifc", 4)
		clk = ifc.Clk.Claim("clk")
		en = ifc.En.Claim("driver")
		reset = ifc.Reset.Claim("test")
	})

	It("should compute the max value", func() {
		Expect(ifc.MaxValue()).To(Equal(uint64(15)))
		Expect(ifc.Width()).To(Equal(4))
	})

	It("should find signals by name", func() {
		Expect(ifc.Signal(NameEn)).To(BeIdenticalTo(ifc.En))
		Expect(ifc.Signal("nope")).To(BeNil())
		Expect(ifc.Signals()).To(HaveLen(4))
	})

	It("should latch driven values at the rising clock edge", func() {
		en.Drive(1)
		clk.Put(0)
		Expect(ifc.En.Value()).To(Equal(uint64(0)))

		clk.Put(1)
		Expect(ifc.En.Value()).To(Equal(uint64(1)))
		Expect(ifc.En.Previous()).To(Equal(uint64(0)))

		clk.Put(0)
		clk.Put(1)
		Expect(ifc.En.Value()).To(Equal(uint64(1)))
		Expect(ifc.En.Previous()).To(Equal(uint64(1)))
	})

	It("should latch before other clock listeners run", func() {
		var seenPrev, seenValue uint64
		ifc.Clk.OnPosedge(func() {
			seenPrev = ifc.En.Previous()
			seenValue = ifc.En.Value()
		})

		en.Drive(1)
		clk.Put(1)

		Expect(seenPrev).To(Equal(uint64(0)))
		Expect(seenValue).To(Equal(uint64(1)))
	})

	It("should latch immediate writes too", func() {
		reset.Put(1)
		Expect(ifc.Reset.Previous()).To(Equal(uint64(0)))

		clk.Put(1)
		Expect(ifc.Reset.Previous()).To(Equal(uint64(1)))
		Expect(ifc.Reset.Value()).To(Equal(uint64(1)))
	})

	It("should reject invalid widths", func() {
		Expect(func() { NewInterface("bad", 0) }).To(Panic())
		Expect(func() { NewInterface("bad", 64) }).To(Panic())
	})
})
