package integrators

import (
	"math"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// The last row is the fifth-order solution; evaluating it yields the FSAL
// stage used by the error estimate.
var (
	dpA = [][]float64{
		nil,
		{b21},
		{b31, b32},
		{b41, b42, b43},
		{b51, b52, b53, b54},
		{b61, b62, b63, b64, b65},
		{c1, 0, c3, c4, c5, c6},
	}
	dpErr = []float64{dc1, 0, dc3, dc4, dc5, dc6, dc7}
)

// RK45Integrator is the adaptive Dormand-Prince 5(4) scheme. A step always
// covers the requested dt: an attempt whose error estimate exceeds the
// tolerance is rejected and retried from the same state with a shorter
// substep, and accepted substeps continue until dt is covered. The controller's
// proposal for the next step is written back to the simulation. Only real
// particles enter the error norm.
type RK45Integrator struct {
	rkScratch

	Tolerance float64
	MinDt     float64
	MaxDt     float64

	safety   float64
	minScale float64
	maxScale float64

	lastError float64
	rejected  int
}

// rk45MaxRejections bounds the retries of a single substep.
const rk45MaxRejections = 8

func NewRK45() *RK45Integrator {
	return &RK45Integrator{
		Tolerance: 1e-9,
		safety:    0.9,
		minScale:  0.2,
		maxScale:  10.0,
	}
}

func (r *RK45Integrator) Part1(s System) {}

func (r *RK45Integrator) Part2(s System) {
	dt := s.Dt()
	setVel := s.Flags().VelocityDependent
	final := dpA[len(dpA)-1]

	r.ensureScratch(len(s.Particles()), len(dpErr))
	r.rejected = 0

	next := dt
	remaining := dt
	h := dt
	truncated := false
	retries := 0
	for {
		r.load(s.Particles())
		for k := 1; k < len(dpA); k++ {
			r.stage(s, k, dpA[k], h, setVel)
		}
		errRatio := r.errorRatio(s.NumReal(), dpErr, h, r.Tolerance)

		if errRatio > 1 && retries < rk45MaxRejections && !r.atMinDt(h) {
			r.restore(s.Particles())
			h = r.nextDt(h, errRatio)
			truncated = false
			retries++
			r.rejected++
			continue
		}

		// the last stage was evaluated at the accepted state, so the store
		// already holds its accelerations
		r.combine(s.Particles(), final, h)
		s.SetTime(s.Time() + h)
		r.lastError = errRatio
		if !truncated {
			next = r.nextDt(h, errRatio)
		}
		retries = 0

		remaining -= h
		if remaining == 0 || math.Signbit(remaining) != math.Signbit(dt) {
			break
		}
		h, truncated = next, false
		if math.Abs(h) >= math.Abs(remaining) {
			h, truncated = remaining, true
		}
	}
	s.SetDt(next)
}

// LastError returns the error ratio (estimate / tolerance) of the last
// accepted substep.
func (r *RK45Integrator) LastError() float64 { return r.lastError }

// Rejected returns how many attempts the last step discarded.
func (r *RK45Integrator) Rejected() int { return r.rejected }

func (r *RK45Integrator) atMinDt(h float64) bool {
	return r.MinDt > 0 && math.Abs(h) <= r.MinDt
}

func (r *RK45Integrator) nextDt(dt, errRatio float64) float64 {
	var scale float64
	switch {
	case errRatio > 1:
		scale = math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		scale = math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		scale = r.maxScale
	}

	dtNew := dt * scale
	sign := math.Copysign(1, dt)
	if r.MaxDt > 0 && math.Abs(dtNew) > r.MaxDt {
		dtNew = sign * r.MaxDt
	}
	if r.MinDt > 0 && math.Abs(dtNew) < r.MinDt {
		dtNew = sign * r.MinDt
	}
	return dtNew
}

func (r *RK45Integrator) Synchronize(s System) {}

func (r *RK45Integrator) Reset() {
	r.rkScratch = rkScratch{}
	r.lastError = 0
	r.rejected = 0
}
