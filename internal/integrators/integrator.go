package integrators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/nbody/internal/particle"
)

// ErrUnknownIntegrator is returned when a name or kind has no variant.
var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// System is the view of a simulation that a variant steps. Particles returns
// the live store: the first NumReal entries are real bodies, the trailing
// NumVariational entries are shadow displacements.
type System interface {
	Particles() []particle.Particle
	NumReal() int
	NumActive() int
	NumVariational() int

	Time() float64
	SetTime(t float64)
	Dt() float64
	SetDt(dt float64)
	G() float64
	Softening() float64

	Flags() Flags
	// ConsumeModified reports whether the store changed outside the
	// integrator since the last call, and clears the mark.
	ConsumeModified() bool
	// EvaluateForces runs the full force pipeline on the current store.
	EvaluateForces()
}

// Integrator advances a System by one step split around a force evaluation.
type Integrator interface {
	// Part1 runs before the force evaluation. On return, real particle
	// positions are Cartesian and valid for the force law.
	Part1(s System)
	// Part2 runs after the force evaluation and completes the step.
	Part2(s System)
	// Synchronize writes any cached coordinates back to the store. It is
	// idempotent.
	Synchronize(s System)
	// Reset drops cached state without touching the store.
	Reset()
}

// Flags are the variant-local switches inspected by the driving loop.
type Flags struct {
	// ManualSync leaves Part2 unsynchronized; the store is only valid for
	// continuing integration until Synchronize is called.
	ManualSync bool
	// PersistentParticles promises the store is not edited between steps, so
	// coordinate caches may be reused instead of rebuilt.
	PersistentParticles bool
	// VelocityDependent declares that extra forces read velocities.
	VelocityDependent bool
}

// DefaultFlags is the configuration of a fresh simulation.
func DefaultFlags() Flags {
	return Flags{VelocityDependent: true}
}

type Kind int

const (
	Leapfrog Kind = iota
	Euler
	WHFast
	RK4
	RK45
)

var kindNames = map[Kind]string{
	Leapfrog: "leapfrog",
	Euler:    "euler",
	WHFast:   "whfast",
	RK4:      "rk4",
	RK45:     "rk45",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a variant by name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
}

// Names lists every variant name in Kind order.
func Names() []string {
	names := make([]string, 0, len(kindNames))
	for k := Leapfrog; k <= RK45; k++ {
		names = append(names, kindNames[k])
	}
	return names
}

// New constructs a fresh variant of kind k.
func New(k Kind) (Integrator, error) {
	switch k {
	case Leapfrog:
		return NewLeapfrog(), nil
	case Euler:
		return NewEuler(), nil
	case WHFast:
		return NewWHFast(), nil
	case RK4:
		return NewRK4(), nil
	case RK45:
		return NewRK45(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownIntegrator, k)
}
