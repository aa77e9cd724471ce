package integrators

// EulerIntegrator is the symplectic (semi-implicit) Euler scheme: forces are taken at
// the start of the step, velocities are kicked first and positions drift
// with the new velocities.
type EulerIntegrator struct{}

func NewEuler() *EulerIntegrator {
	return &EulerIntegrator{}
}

func (e *EulerIntegrator) Part1(s System) {}

func (e *EulerIntegrator) Part2(s System) {
	dt := s.Dt()
	ps := s.Particles()
	kick(ps, dt)
	drift(ps, dt)
	s.SetTime(s.Time() + dt)
}

func (e *EulerIntegrator) Synchronize(s System) {}

func (e *EulerIntegrator) Reset() {}
