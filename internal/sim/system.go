package sim

import (
	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/particle"
)

// system exposes a Simulation to the integrator variants.
type system struct {
	s *Simulation
}

func (s *Simulation) system() system { return system{s} }

func (y system) Particles() []particle.Particle { return y.s.store.All() }
func (y system) NumReal() int                   { return y.s.N() }
func (y system) NumActive() int                 { return y.s.NActive() }
func (y system) NumVariational() int            { return y.s.nVar }
func (y system) Time() float64                  { return y.s.t }
func (y system) SetTime(t float64)              { y.s.t = t }
func (y system) Dt() float64                    { return y.s.dt }
func (y system) SetDt(dt float64)               { y.s.dt = dt }
func (y system) G() float64                     { return y.s.g }
func (y system) Softening() float64             { return y.s.eps }
func (y system) Flags() integrators.Flags       { return y.s.flags }
func (y system) EvaluateForces()                { y.s.computeForces() }

func (y system) ConsumeModified() bool {
	m := y.s.modified
	y.s.modified = false
	return m
}

var _ integrators.System = system{}
