package sequencing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tbkit/phase"
	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

type drivenItem struct {
	time  sim.VTime
	value string
}

var _ = Describe("Driver", func() {
	var (
		engine  *sim.SerialEngine
		kernel  *sim.Kernel
		tracker *phase.ObjectionTracker
		clkSig  *signal.Signal
		clock   *signal.Clock
		seqr    *Sequencer[string]
		driven  []drivenItem
		driver  *Driver[string]
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		kernel = sim.NewKernel(engine)
		tracker = phase.NewObjectionTracker()
		clkSig = signal.New("clk", 0)
		clock = signal.NewClock("Clock", engine, clkSig, 10)
		seqr = NewSequencer[string]("Seqr", kernel)
		driven = nil

		pins := ItemDriverFunc[string](func(item string) {
			driven = append(driven, drivenItem{time: engine.CurrentTime(), value: item})
		})
		driver = NewDriver[string]("Driver", seqr, clkSig, pins, tracker)
		driver.Build()
		driver.Connect()
		kernel.Spawn("Driver", driver.Run)
	})

	AfterEach(func() {
		kernel.Shutdown()
	})

	It("should drive one item per falling edge", func() {
		kernel.At(2, func() {
			seqr.Add("a")
			seqr.Add("b")
		})
		kernel.At(40, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(driven).To(Equal([]drivenItem{{5, "a"}, {15, "b"}}))
		Expect(driver.NumDriven()).To(Equal(uint64(2)))
		Expect(driver.Pending()).To(Equal(0))
	})

	It("should hold an objection while items are pending", func() {
		counts := map[sim.VTime]int{}
		tracker.OnCountChange(func(p phase.Phase, count int) {
			counts[engine.CurrentTime()] = count
		})

		kernel.At(2, func() {
			seqr.Add("a")
			seqr.Add("b")
			Expect(driver.HasObjection()).To(BeTrue())
			Expect(tracker.Count(phase.PhaseRun)).To(Equal(1))
		})
		kernel.At(10, func() {
			Expect(driver.HasObjection()).To(BeTrue())
		})
		kernel.At(40, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(counts).To(Equal(map[sim.VTime]int{2: 1, 15: 0}))
		Expect(driver.HasObjection()).To(BeFalse())
		Expect(tracker.Faults()).To(BeEmpty())
	})

	It("should raise again when new items arrive after draining", func() {
		raised := 0
		tracker.OnCountChange(func(p phase.Phase, count int) {
			if count == 1 {
				raised++
			}
		})

		kernel.At(2, func() { seqr.Add("a") })
		kernel.At(22, func() { seqr.Add("b") })
		kernel.At(40, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(raised).To(Equal(2))
		Expect(driven).To(Equal([]drivenItem{{5, "a"}, {25, "b"}}))
	})

	It("should raise the fault when its objection was dropped elsewhere", func() {
		kernel.At(2, func() { seqr.Add("a") })
		kernel.At(3, func() {
			outstanding := tracker.Outstanding(phase.PhaseRun)
			Expect(outstanding).To(HaveLen(1))
			Expect(outstanding[0].Drop()).To(Succeed())
		})

		clock.Start()

		Expect(func() { _ = engine.Run() }).To(PanicWith(
			HaveField("Kind", phase.KindObjectionMisuse)))
		Expect(tracker.Faults()).To(HaveLen(1))
		Expect(driven).To(Equal([]drivenItem{{5, "a"}}))
	})
})
