package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		queue *EventQueueImpl
	)

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Push(NewEventBase(VTime(rand.Intn(1000)), nil))
		}

		now := VTime(0)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time() >= now).To(BeTrue())
			now = event.Time()
		}
	})

	It("should keep push order for same-time events", func() {
		events := make([]*EventBase, 0)
		for i := 0; i < 50; i++ {
			evt := NewEventBase(VTime(i%3), nil)
			events = append(events, evt)
			queue.Push(evt)
		}

		for t := 0; t < 3; t++ {
			for i := t; i < 50; i += 3 {
				Expect(queue.Pop()).To(BeIdenticalTo(events[i]))
			}
		}
	})

	It("should return nil when empty", func() {
		Expect(queue.Pop()).To(BeNil())
		Expect(queue.Peek()).To(BeNil())
	})

	It("should clear", func() {
		queue.Push(NewEventBase(1, nil))
		queue.Clear()
		Expect(queue.Len()).To(Equal(0))
	})
})
