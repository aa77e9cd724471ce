package integrators

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
)

// WHFastIntegrator is a Wisdom-Holman mapping in Jacobi coordinates. Each
// Jacobi body drifts on a Kepler orbit around the interior mass and is kicked
// by the remaining interaction forces.
//
// Jacobi coordinates are cached between steps. When the store is not
// synchronized the closing half drift of one step and the opening half drift
// of the next are applied as a single drift. Test particles (beyond the
// active count) carry no mass in the Jacobi transform.
//
// Shadow particles are transformed with the same Jacobi masses and advanced
// by the linearized Kepler drift and kick, so they follow the tangent map of
// the real step.
type WHFastIntegrator struct {
	m, eta []float64
	pj, vj []particle.Vec3
	aj     []particle.Vec3
	buf    []particle.Vec3

	// tangent state of the shadows, one per real body
	dpj, dvj []particle.Vec3

	n, nv        int
	ready        bool
	synchronized bool
}

func NewWHFast() *WHFastIntegrator {
	return &WHFastIntegrator{}
}

// Synchronized reports whether the store reflects the cached state.
func (w *WHFastIntegrator) Synchronized() bool {
	return !w.ready || w.synchronized
}

func (w *WHFastIntegrator) Part1(s System) {
	n := s.NumReal()
	nv := s.NumVariational()
	flags := s.Flags()
	modified := s.ConsumeModified()

	if !w.ready || w.n != n || w.nv != nv || modified || !flags.PersistentParticles {
		if w.ready && !w.synchronized && !modified && w.n == n && w.nv == nv {
			w.Synchronize(s)
		}
		w.load(s)
	}

	h := s.Dt() / 2
	if !w.synchronized {
		h = s.Dt()
	}
	w.drift(s, h)
	w.synchronized = false

	w.storePositions(s)
	if flags.VelocityDependent {
		w.storeVelocities(s)
	} else {
		w.storeShadowVelocities(s)
	}
	s.SetTime(s.Time() + s.Dt()/2)
}

func (w *WHFastIntegrator) Part2(s System) {
	dt := s.Dt()
	ps := s.Particles()
	g := s.G()
	n := w.n

	for i := 0; i < n; i++ {
		w.buf[i] = ps[i].A
	}
	toJacobi(w.buf, w.m, w.eta, w.aj)
	for i := 0; i < n; i++ {
		a := w.aj[i]
		if i > 0 {
			r := w.pj[i].Norm()
			if r > 0 {
				a = a.Add(w.pj[i].Scale(g * w.eta[i] / (r * r * r)))
			}
		}
		w.vj[i] = w.vj[i].Add(a.Scale(dt))
	}

	shadows := ps[len(ps)-s.NumVariational():]
	if w.tangent() {
		w.kickTangent(shadows, g, dt)
	} else {
		kick(shadows, dt)
	}

	if !s.Flags().ManualSync {
		w.drift(s, dt/2)
		w.synchronized = true
		w.storePositions(s)
		w.storeVelocities(s)
	}
	s.SetTime(s.Time() + dt/2)
}

// kickTangent applies the linearized interaction kick. The shadow
// accelerations come from the variational force pass; the Kepler part that
// the drift already accounts for is removed through its Jacobian.
func (w *WHFastIntegrator) kickTangent(shadows []particle.Particle, g, dt float64) {
	for i := 0; i < w.n; i++ {
		w.buf[i] = shadows[i].A
	}
	toJacobi(w.buf, w.m, w.eta, w.aj)
	for i := 0; i < w.n; i++ {
		da := w.aj[i]
		if i > 0 {
			p, dp := w.pj[i], w.dpj[i]
			r2 := p.Norm2()
			if r2 > 0 {
				r := math.Sqrt(r2)
				gm := g * w.eta[i]
				r3 := r2 * r
				da = da.Add(dp.Scale(gm / r3)).Sub(p.Scale(3 * gm * p.Dot(dp) / (r3 * r2)))
			}
		}
		w.dvj[i] = w.dvj[i].Add(da.Scale(dt))
	}
}

// Synchronize applies the pending half drift and writes positions and
// velocities to the store.
func (w *WHFastIntegrator) Synchronize(s System) {
	if !w.ready || w.synchronized {
		return
	}
	w.drift(s, s.Dt()/2)
	w.synchronized = true
	w.storePositions(s)
	w.storeVelocities(s)
}

func (w *WHFastIntegrator) Reset() {
	*w = WHFastIntegrator{}
}

// tangent reports whether the shadows are carried in Jacobi coordinates.
func (w *WHFastIntegrator) tangent() bool {
	return w.nv > 0 && w.nv == w.n
}

// load rebuilds the Jacobi cache from the store.
func (w *WHFastIntegrator) load(s System) {
	ps := s.Particles()
	n := s.NumReal()
	nv := s.NumVariational()
	active := s.NumActive()

	if cap(w.m) < n {
		w.m = make([]float64, n)
		w.eta = make([]float64, n)
		w.pj = make([]particle.Vec3, n)
		w.vj = make([]particle.Vec3, n)
		w.aj = make([]particle.Vec3, n)
		w.buf = make([]particle.Vec3, n)
		w.dpj = make([]particle.Vec3, n)
		w.dvj = make([]particle.Vec3, n)
	}
	w.m, w.eta = w.m[:n], w.eta[:n]
	w.pj, w.vj, w.aj, w.buf = w.pj[:n], w.vj[:n], w.aj[:n], w.buf[:n]
	w.dpj, w.dvj = w.dpj[:n], w.dvj[:n]

	for i := 0; i < n; i++ {
		w.m[i] = 0
		if i < active {
			w.m[i] = ps[i].M
		}
	}
	jacobiMasses(w.m, w.eta)

	for i := 0; i < n; i++ {
		w.buf[i] = ps[i].Pos
	}
	toJacobi(w.buf, w.m, w.eta, w.pj)
	for i := 0; i < n; i++ {
		w.buf[i] = ps[i].Vel
	}
	toJacobi(w.buf, w.m, w.eta, w.vj)

	w.n, w.nv = n, nv
	if w.tangent() {
		shadows := ps[n:]
		for i := 0; i < n; i++ {
			w.buf[i] = shadows[i].Pos
		}
		toJacobi(w.buf, w.m, w.eta, w.dpj)
		for i := 0; i < n; i++ {
			w.buf[i] = shadows[i].Vel
		}
		toJacobi(w.buf, w.m, w.eta, w.dvj)
	}

	w.ready = true
	w.synchronized = true
}

func (w *WHFastIntegrator) drift(s System, h float64) {
	tangent := w.tangent()
	if w.n > 0 {
		w.pj[0] = w.pj[0].Add(w.vj[0].Scale(h))
		if tangent {
			w.dpj[0] = w.dpj[0].Add(w.dvj[0].Scale(h))
		}
	}
	g := s.G()
	for i := 1; i < w.n; i++ {
		if tangent {
			w.pj[i], w.vj[i], w.dpj[i], w.dvj[i] = keplerDriftTangent(w.pj[i], w.vj[i], w.dpj[i], w.dvj[i], g*w.eta[i], h)
			continue
		}
		w.pj[i], w.vj[i] = keplerDrift(w.pj[i], w.vj[i], g*w.eta[i], h)
	}

	if !tangent {
		ps := s.Particles()
		drift(ps[len(ps)-s.NumVariational():], h)
	}
}

func (w *WHFastIntegrator) storePositions(s System) {
	ps := s.Particles()
	fromJacobi(w.pj, w.m, w.eta, w.buf)
	for i := 0; i < w.n; i++ {
		ps[i].Pos = w.buf[i]
	}
	if w.tangent() {
		fromJacobi(w.dpj, w.m, w.eta, w.buf)
		shadows := ps[w.n:]
		for i := 0; i < w.n; i++ {
			shadows[i].Pos = w.buf[i]
		}
	}
}

func (w *WHFastIntegrator) storeVelocities(s System) {
	ps := s.Particles()
	fromJacobi(w.vj, w.m, w.eta, w.buf)
	for i := 0; i < w.n; i++ {
		ps[i].Vel = w.buf[i]
	}
	w.storeShadowVelocities(s)
}

// storeShadowVelocities writes the tangent velocities, which the MEGNO
// update reads after every force evaluation.
func (w *WHFastIntegrator) storeShadowVelocities(s System) {
	if !w.tangent() {
		return
	}
	fromJacobi(w.dvj, w.m, w.eta, w.buf)
	shadows := s.Particles()[w.n:]
	for i := 0; i < w.n; i++ {
		shadows[i].Vel = w.buf[i]
	}
}
