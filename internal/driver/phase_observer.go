package driver

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart is sent before a pass touches a method.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary for one method.
type PhaseEvent struct {
	Name   string
	Method string
	Status PhaseStatus
	// Err is set on PhaseEnd when the phase failed.
	Err error
}

// PhaseObserver receives phase events emitted by the driver.
type PhaseObserver func(PhaseEvent)

func notify(obs PhaseObserver, ev PhaseEvent) {
	if obs != nil {
		obs(ev)
	}
}
