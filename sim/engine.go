package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTime)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	EventScheduler

	// Run will process all the events until the simulation finishes or the
	// engine is terminated.
	Run() error

	// Pause will pause the simulation until continue is called.
	Pause()

	// Continue will continue the paused simulation
	Continue()

	// Terminate makes Run return once the event being handled completes.
	// Events still in the queue are discarded.
	Terminate()

	// RegisterSimulationEndHandler registers a handler that perform some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler
	Finished()
}
