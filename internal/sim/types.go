package sim

import "fmt"

// Status is the outcome of a driving-loop call.
type Status int

const (
	StatusOK Status = iota
	StatusNoParticles
	StatusEscape
	StatusCloseEncounter
)

var statusNames = [...]string{
	StatusOK:             "ok",
	StatusNoParticles:    "no particles",
	StatusEscape:         "escape",
	StatusCloseEncounter: "close encounter",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Err maps a non-OK status to its sentinel error.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusNoParticles:
		return ErrNoParticles
	case StatusEscape:
		return ErrEscape
	case StatusCloseEncounter:
		return ErrCloseEncounter
	}
	return fmt.Errorf("sim: unknown status %d", int(s))
}

// IntegrateOptions controls Integrate. A zero MaxRadius or MinDistance
// disables the corresponding check.
type IntegrateOptions struct {
	ExactFinish      bool
	KeepSynchronized bool
	MaxRadius        float64
	MinDistance      float64
}

// ForceFunc adds extra accelerations to the real particles after gravity
// has been evaluated.
type ForceFunc func(s *Simulation)

// Observer is called after every step. The store it sees is synchronized,
// even when the integrator runs with ManualSync.
type Observer interface {
	OnStep(s *Simulation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s *Simulation)

func (f ObserverFunc) OnStep(s *Simulation) { f(s) }
