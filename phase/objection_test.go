package phase

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = ginkgo.Describe("ObjectionTracker", func() {
	var (
		tracker *ObjectionTracker
		changes []int
		faults  []error
	)

	ginkgo.BeforeEach(func() {
		tracker = NewObjectionTracker()
		changes = nil
		faults = nil
		tracker.OnCountChange(func(p Phase, count int) {
			changes = append(changes, count)
		})
		tracker.OnFault(func(err error) { faults = append(faults, err) })
	})

	ginkgo.It("should count objections per phase", func() {
		o1 := tracker.Raise(PhaseRun, "test", "stimulus")
		o2 := tracker.Raise(PhaseRun, "driver", "busy")
		tracker.Raise(PhaseReport, "other", "x")

		Expect(tracker.Count(PhaseRun)).To(Equal(2))
		Expect(tracker.Count(PhaseReport)).To(Equal(1))
		Expect(tracker.Outstanding(PhaseRun)).To(Equal([]*Objection{o1, o2}))

		Expect(o1.Drop()).To(Succeed())
		Expect(o1.Held()).To(BeFalse())
		Expect(o2.Held()).To(BeTrue())
		Expect(tracker.Count(PhaseRun)).To(Equal(1))
		Expect(tracker.Outstanding(PhaseRun)).To(Equal([]*Objection{o2}))
		Expect(changes).To(Equal([]int{1, 2, 1, 1}))
	})

	ginkgo.It("should report a double drop", func() {
		o := tracker.Raise(PhaseRun, "test", "stimulus")

		Expect(o.Drop()).To(Succeed())
		err := o.Drop()

		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(ErrObjectionNotHeld))
		Expect(errors.Is(err, ErrObjectionNotHeld)).To(BeTrue())

		kind, ok := KindOf(err)
		Expect(ok).To(BeTrue())
		Expect(kind).To(Equal(KindObjectionMisuse))

		Expect(tracker.Count(PhaseRun)).To(Equal(0))
		Expect(tracker.Faults()).To(HaveLen(1))
		Expect(faults).To(HaveLen(1))
	})

	ginkgo.It("should not let a double drop release another objection", func() {
		o1 := tracker.Raise(PhaseRun, "a", "x")
		tracker.Raise(PhaseRun, "b", "y")

		Expect(o1.Drop()).To(Succeed())
		Expect(o1.Drop()).NotTo(Succeed())

		Expect(tracker.Count(PhaseRun)).To(Equal(1))
	})
})
