package integrators

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
)

// rkScratch holds the stage buffers shared by the Runge-Kutta variants. The
// state vector is every particle's position and velocity; stage derivatives
// are produced by the simulation's own force pipeline.
type rkScratch struct {
	x0, v0 []particle.Vec3
	kx, kv [][]particle.Vec3
}

func (r *rkScratch) ensureScratch(n, stages int) {
	if len(r.x0) == n && len(r.kx) == stages {
		return
	}
	r.x0 = make([]particle.Vec3, n)
	r.v0 = make([]particle.Vec3, n)
	r.kx = make([][]particle.Vec3, stages)
	r.kv = make([][]particle.Vec3, stages)
	for k := 0; k < stages; k++ {
		r.kx[k] = make([]particle.Vec3, n)
		r.kv[k] = make([]particle.Vec3, n)
	}
}

// load captures the start-of-step state. The accelerations already in the
// store form the first stage.
func (r *rkScratch) load(ps []particle.Particle) {
	for i, p := range ps {
		r.x0[i] = p.Pos
		r.v0[i] = p.Vel
		r.kx[0][i] = p.Vel
		r.kv[0][i] = p.A
	}
}

// restore puts the start-of-step state back into the store.
func (r *rkScratch) restore(ps []particle.Particle) {
	for i := range ps {
		ps[i].Pos = r.x0[i]
		ps[i].Vel = r.v0[i]
		ps[i].A = r.kv[0][i]
	}
}

func (r *rkScratch) at(i int, coeffs []float64, dt float64) (x, v particle.Vec3) {
	x, v = r.x0[i], r.v0[i]
	for j, c := range coeffs {
		if c == 0 {
			continue
		}
		x = x.Add(r.kx[j][i].Scale(dt * c))
		v = v.Add(r.kv[j][i].Scale(dt * c))
	}
	return x, v
}

// stage evaluates stage k at y0 + dt*Σ coeffs[j]*k[j]. Stage velocities are
// only written to the store when forces depend on them.
func (r *rkScratch) stage(s System, k int, coeffs []float64, dt float64, setVel bool) {
	ps := s.Particles()
	for i := range ps {
		x, v := r.at(i, coeffs, dt)
		ps[i].Pos = x
		if setVel {
			ps[i].Vel = v
		}
		r.kx[k][i] = v
	}
	s.EvaluateForces()
	for i := range ps {
		r.kv[k][i] = ps[i].A
	}
}

func (r *rkScratch) combine(ps []particle.Particle, weights []float64, dt float64) {
	for i := range ps {
		ps[i].Pos, ps[i].Vel = r.at(i, weights, dt)
	}
}

// errorRatio is the largest scaled component of dt*Σ weights[j]*k[j] over
// the first n particles.
func (r *rkScratch) errorRatio(n int, weights []float64, dt, tol float64) float64 {
	errMax := 0.0
	for i := 0; i < n; i++ {
		var ex, ev particle.Vec3
		for j, w := range weights {
			if w == 0 {
				continue
			}
			ex = ex.Add(r.kx[j][i].Scale(dt * w))
			ev = ev.Add(r.kv[j][i].Scale(dt * w))
		}
		errMax = math.Max(errMax, scaledError(ex, r.x0[i], r.kx[0][i].Scale(dt)))
		errMax = math.Max(errMax, scaledError(ev, r.v0[i], r.kv[0][i].Scale(dt)))
	}
	return errMax / tol
}

func scaledError(e, y, dy particle.Vec3) float64 {
	m := 0.0
	for _, c := range [3][3]float64{
		{e.X, y.X, dy.X},
		{e.Y, y.Y, dy.Y},
		{e.Z, y.Z, dy.Z},
	} {
		scale := math.Abs(c[1]) + math.Abs(c[2]) + 1e-10
		m = math.Max(m, math.Abs(c[0])/scale)
	}
	return m
}
