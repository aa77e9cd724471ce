package integrators

import (
	"math"

	"github.com/san-kum/nbody/internal/gravity"
	"github.com/san-kum/nbody/internal/particle"
)

// testSystem is a minimal gravitating System for driving variants directly.
type testSystem struct {
	ps       []particle.Particle
	nVar     int
	nActive  int
	t, dt    float64
	g, eps   float64
	flags    Flags
	modified bool
	evals    int
}

func newTestSystem(ps []particle.Particle, dt float64) *testSystem {
	s := &testSystem{
		ps:       append([]particle.Particle(nil), ps...),
		nActive:  -1,
		dt:       dt,
		g:        1,
		flags:    DefaultFlags(),
		modified: true,
	}
	return s
}

func (s *testSystem) Particles() []particle.Particle { return s.ps }
func (s *testSystem) NumReal() int                   { return len(s.ps) - s.nVar }
func (s *testSystem) NumActive() int                 { return gravity.ActiveCount(s.nActive, s.NumReal()) }
func (s *testSystem) NumVariational() int            { return s.nVar }
func (s *testSystem) Time() float64                  { return s.t }
func (s *testSystem) SetTime(t float64)              { s.t = t }
func (s *testSystem) Dt() float64                    { return s.dt }
func (s *testSystem) SetDt(dt float64)               { s.dt = dt }
func (s *testSystem) G() float64                     { return s.g }
func (s *testSystem) Softening() float64             { return s.eps }
func (s *testSystem) Flags() Flags                   { return s.flags }

func (s *testSystem) ConsumeModified() bool {
	m := s.modified
	s.modified = false
	return m
}

func (s *testSystem) EvaluateForces() {
	s.evals++
	n := s.NumReal()
	gravity.Accelerations(s.ps[:n], s.nActive, s.g, s.eps)
	if s.nVar > 0 {
		gravity.Variational(s.ps[:n], s.ps[n:], s.nActive, s.g, s.eps)
	}
}

func (s *testSystem) energy() float64 {
	return gravity.Energy(s.ps[:s.NumReal()], s.nActive, s.g, s.eps)
}

func step(in Integrator, s *testSystem) {
	in.Part1(s)
	s.EvaluateForces()
	in.Part2(s)
}

func run(in Integrator, s *testSystem, steps int) {
	for i := 0; i < steps; i++ {
		step(in, s)
	}
	in.Synchronize(s)
}

// keplerProblem is a massless body on an orbit of semi-major axis 1 around
// a unit mass; its period is 2π.
func keplerProblem(e float64) []particle.Particle {
	star := particle.Particle{M: 1}
	return []particle.Particle{star, particle.Orbit2D(1, star, 0, 1, e, 0, 0)}
}

// twoPlanets is a star with two massive planets in near-circular orbits.
func twoPlanets() []particle.Particle {
	star := particle.Particle{M: 1}
	ps := []particle.Particle{
		star,
		particle.Orbit2D(1, star, 1e-3, 1, 0.05, 0, 0),
		particle.Orbit2D(1, star, 3e-4, 1.8, 0.02, 1, 2),
	}
	particle.MoveToCenterOfMomentum(ps)
	return ps
}

func distance(a, b particle.Vec3) float64 {
	return a.Sub(b).Norm()
}

func relErr(got, want float64) float64 {
	return math.Abs((got - want) / want)
}
