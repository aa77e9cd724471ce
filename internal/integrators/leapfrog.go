package integrators

// LeapfrogIntegrator is the drift-kick-drift scheme in Cartesian coordinates. It keeps
// no state between steps, so Synchronize and Reset are no-ops. Shadow
// displacements follow the same update, which is exactly the linearised
// scheme.
type LeapfrogIntegrator struct{}

func NewLeapfrog() *LeapfrogIntegrator {
	return &LeapfrogIntegrator{}
}

func (l *LeapfrogIntegrator) Part1(s System) {
	dt := s.Dt()
	drift(s.Particles(), 0.5*dt)
	s.SetTime(s.Time() + 0.5*dt)
}

func (l *LeapfrogIntegrator) Part2(s System) {
	dt := s.Dt()
	ps := s.Particles()
	kick(ps, dt)
	drift(ps, 0.5*dt)
	s.SetTime(s.Time() + 0.5*dt)
}

func (l *LeapfrogIntegrator) Synchronize(s System) {}

func (l *LeapfrogIntegrator) Reset() {}
