package integrators

var (
	rk4A = [][]float64{
		nil,
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	}
	rk4B = []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0}
)

// RK4Integrator is the classical fixed-step fourth-order Runge-Kutta scheme. It
// evaluates three extra stages inside Part2.
type RK4Integrator struct {
	rkScratch
}

func NewRK4() *RK4Integrator {
	return &RK4Integrator{}
}

func (r *RK4Integrator) Part1(s System) {}

func (r *RK4Integrator) Part2(s System) {
	dt := s.Dt()
	ps := s.Particles()
	setVel := s.Flags().VelocityDependent

	r.ensureScratch(len(ps), len(rk4A))
	r.load(ps)
	for k := 1; k < len(rk4A); k++ {
		r.stage(s, k, rk4A[k], dt, setVel)
	}

	ps = s.Particles()
	r.combine(ps, rk4B, dt)
	s.SetTime(s.Time() + dt)
}

func (r *RK4Integrator) Synchronize(s System) {}

func (r *RK4Integrator) Reset() {
	r.rkScratch = rkScratch{}
}
