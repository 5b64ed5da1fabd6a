package dut

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tbkit/signal"
	"github.com/sarchlab/tbkit/sim"
)

var _ = Describe("Counter", func() {
	var (
		engine *sim.SerialEngine
		kernel *sim.Kernel
		ifc    *signal.Interface
		clock  *signal.Clock
		reset  *signal.Writer
		en     *signal.Writer
		values map[sim.VTime]uint64
	)

	newCounter := func(opts ...Option) *Counter {
		c := NewCounter("Counter", ifc, opts...)
		ifc.Clk.OnPosedge(func() {
			values[engine.CurrentTime()] = ifc.Val.Value()
		})

		return c
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		kernel = sim.NewKernel(engine)
		ifc = signal.NewInterface("If", 2)
		clock = signal.NewClock("Clock", engine, ifc.Clk, 10)
		reset = ifc.Reset.Claim("test")
		en = ifc.En.Claim("test")
		values = map[sim.VTime]uint64{}
	})

	AfterEach(func() {
		kernel.Shutdown()
	})

	It("should own the value bus", func() {
		newCounter()

		Expect(ifc.Val.Owner()).To(Equal("Counter"))
	})

	It("should count the enables it captured and wrap", func() {
		c := newCounter()

		kernel.At(1, func() { en.Drive(1) })
		kernel.At(65, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		// en rises at 10 and is captured from 20 on.
		Expect(values).To(Equal(map[sim.VTime]uint64{
			0: 0, 10: 0, 20: 1, 30: 2, 40: 3, 50: 0, 60: 1,
		}))
		Expect(c.Value()).To(Equal(uint64(1)))
	})

	It("should clear while reset was high", func() {
		newCounter()

		kernel.At(1, func() { en.Drive(1) })
		kernel.At(23, func() { reset.Put(1) })
		kernel.At(33, func() { reset.Put(0) })
		kernel.At(55, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(values).To(Equal(map[sim.VTime]uint64{
			0: 0, 10: 0, 20: 1, 30: 0, 40: 1, 50: 2,
		}))
	})

	It("should hold without enable", func() {
		newCounter()

		kernel.At(1, func() { en.Drive(1) })
		kernel.At(15, func() { en.Drive(0) })
		kernel.At(45, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(values).To(Equal(map[sim.VTime]uint64{
			0: 0, 10: 0, 20: 1, 30: 1, 40: 1,
		}))
	})

	It("should apply the fault", func() {
		newCounter(WithFault(func(cycle, next uint64) uint64 {
			if cycle == 2 {
				return next + 2
			}
			return next
		}))

		kernel.At(35, engine.Terminate)

		clock.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(values).To(Equal(map[sim.VTime]uint64{
			0: 0, 10: 0, 20: 2, 30: 2,
		}))
	})
})
