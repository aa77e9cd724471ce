package integrators

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
)

const (
	keplerMaxIter = 50
	keplerTol     = 1e-15
)

// stumpff returns the Stumpff functions C(z) and S(z).
func stumpff(z float64) (c, s float64) {
	switch {
	case z > 0.1:
		sz := math.Sqrt(z)
		return (1 - math.Cos(sz)) / z, (sz - math.Sin(sz)) / (sz * z)
	case z < -0.1:
		sz := math.Sqrt(-z)
		return (math.Cosh(sz) - 1) / -z, (math.Sinh(sz) - sz) / (sz * -z)
	}
	// C = Σ (-z)^k/(2k+2)!, S = Σ (-z)^k/(2k+3)!
	termC, termS := 0.5, 1.0/6.0
	for k := 0; k < 10; k++ {
		c += termC
		s += termS
		termC *= -z / float64((2*k+3)*(2*k+4))
		termS *= -z / float64((2*k+4)*(2*k+5))
	}
	return c, s
}

// stumpffSeries returns c_0(z) through c_5(z), where c_n(z) = Σ (-z)^k/(n+2k)!
// and G_n(beta, s) = s^n c_n(beta s²).
func stumpffSeries(z float64) [6]float64 {
	var c [6]float64
	if math.Abs(z) < 1 {
		for n := range c {
			fact := 1.0
			for i := 2; i <= n; i++ {
				fact *= float64(i)
			}
			term := 1 / fact
			for k := 0; k < 12; k++ {
				c[n] += term
				term *= -z / float64((n+2*k+1)*(n+2*k+2))
			}
		}
		return c
	}
	if z > 0 {
		sz := math.Sqrt(z)
		c[0], c[1] = math.Cos(sz), math.Sin(sz)/sz
	} else {
		sz := math.Sqrt(-z)
		c[0], c[1] = math.Cosh(sz), math.Sinh(sz)/sz
	}
	// c_{n+2} = (1/n! - c_n) / z
	c[2] = (1 - c[0]) / z
	c[3] = (1 - c[1]) / z
	c[4] = (0.5 - c[2]) / z
	c[5] = (1.0/6.0 - c[3]) / z
	return c
}

// keplerDrift advances a two-body relative orbit with gravitational
// parameter gm by dt using universal variables. Without an attracting mass
// the body moves in a straight line.
func keplerDrift(pos, vel particle.Vec3, gm, dt float64) (particle.Vec3, particle.Vec3) {
	r0 := pos.Norm()
	if gm <= 0 || r0 == 0 || dt == 0 {
		return pos.Add(vel.Scale(dt)), vel
	}
	k := solveKepler(pos, vel, gm, dt)
	return k.advance(pos, vel)
}

// keplerDriftTangent advances the orbit like keplerDrift and carries a
// tangent vector (dpos, dvel) through the linearization of the same map.
func keplerDriftTangent(pos, vel, dpos, dvel particle.Vec3, gm, dt float64) (p, v, dp, dv particle.Vec3) {
	r0 := pos.Norm()
	if gm <= 0 || r0 == 0 || dt == 0 {
		return pos.Add(vel.Scale(dt)), vel, dpos.Add(dvel.Scale(dt)), dvel
	}
	k := solveKepler(pos, vel, gm, dt)
	p, v = k.advance(pos, vel)
	dp, dv = k.tangent(pos, vel, dpos, dvel)
	return p, v, dp, dv
}

// keplerStep is a solved universal-variable step in the Stiefel-Scheifele
// G-function form: s is the anomaly, beta = 2gm/r0 - v0², and g[n] = G_n(beta, s).
type keplerStep struct {
	gm, dt   float64
	r0, eta0 float64
	beta, s  float64
	r        float64
	g        [6]float64
}

func solveKepler(pos, vel particle.Vec3, gm, dt float64) keplerStep {
	r0 := pos.Norm()
	sqmu := math.Sqrt(gm)
	alpha := 2/r0 - vel.Norm2()/gm
	sigma0 := pos.Dot(vel) / sqmu
	target := sqmu * dt

	residual := func(x float64) float64 {
		z := alpha * x * x
		c, s := stumpff(z)
		return sigma0*x*x*c + (1-alpha*r0)*x*x*x*s + r0*x - target
	}

	x := target / r0
	if alpha > 0 {
		if xe := target * alpha; math.Abs(residual(xe)) < math.Abs(residual(x)) {
			x = xe
		}
	}
	for iter := 0; iter < keplerMaxIter; iter++ {
		z := alpha * x * x
		c, s := stumpff(z)
		x2 := x * x
		f := sigma0*x2*c + (1-alpha*r0)*x2*x*s + r0*x - target
		fp := x2*c + sigma0*x*(1-z*s) + r0*(1-z*c)
		fpp := sigma0*(1-z*c) + (1-alpha*r0)*x*(1-z*s)

		// Laguerre-Conway, n = 5
		disc := math.Sqrt(math.Abs(16*fp*fp - 20*f*fpp))
		den := fp + math.Copysign(disc, fp)
		if den == 0 {
			break
		}
		dx := 5 * f / den
		x -= dx
		if math.Abs(dx) <= keplerTol*math.Max(1, math.Abs(x)) {
			break
		}
	}

	k := keplerStep{
		gm:   gm,
		dt:   dt,
		r0:   r0,
		eta0: pos.Dot(vel),
		beta: alpha * gm,
		s:    x / sqmu,
	}
	c := stumpffSeries(alpha * x * x)
	sn := 1.0
	for n := range k.g {
		k.g[n] = sn * c[n]
		sn *= k.s
	}
	zeta0 := gm - k.beta*r0
	k.r = r0 + k.eta0*k.g[1] + zeta0*k.g[2]
	return k
}

func (k keplerStep) advance(pos, vel particle.Vec3) (particle.Vec3, particle.Vec3) {
	f := 1 - k.gm*k.g[2]/k.r0
	g := k.r0*k.g[1] + k.eta0*k.g[2]
	fdot := -k.gm * k.g[1] / (k.r0 * k.r)
	gdot := 1 - k.gm*k.g[2]/k.r
	return pos.Scale(f).Add(vel.Scale(g)), pos.Scale(fdot).Add(vel.Scale(gdot))
}

// dbeta returns the partial derivative of G_n with respect to beta.
func (k keplerStep) dbeta(n int) float64 {
	return (float64(n)*k.g[n+2] - k.s*k.g[n+1]) / 2
}

// tangent maps a displacement (dpos, dvel) of the initial state onto the
// displacement of the final state. The anomaly variation follows from the
// Kepler equation r0 s + eta0 G2 + zeta0 G3 = dt, whose s-derivative is r.
func (k keplerStep) tangent(pos, vel, dpos, dvel particle.Vec3) (particle.Vec3, particle.Vec3) {
	gm, r0, r, s := k.gm, k.r0, k.r, k.s
	g0, g1, g2, g3 := k.g[0], k.g[1], k.g[2], k.g[3]
	zeta0 := gm - k.beta*r0

	dr0 := pos.Dot(dpos) / r0
	deta0 := dpos.Dot(vel) + pos.Dot(dvel)
	dbeta := -2*gm*dr0/(r0*r0) - 2*vel.Dot(dvel)
	dzeta0 := -k.beta*dr0 - r0*dbeta

	ds := -(s*dr0 + g2*deta0 + g3*dzeta0 + (k.eta0*k.dbeta(2)+zeta0*k.dbeta(3))*dbeta) / r
	dg1 := g0*ds + k.dbeta(1)*dbeta
	dg2 := g1*ds + k.dbeta(2)*dbeta
	dr := dr0 + deta0*g1 + k.eta0*dg1 + dzeta0*g2 + zeta0*dg2

	f := 1 - gm*g2/r0
	g := r0*g1 + k.eta0*g2
	fdot := -gm * g1 / (r0 * r)
	gdot := 1 - gm*g2/r

	df := -gm * (dg2/r0 - g2*dr0/(r0*r0))
	dg := dr0*g1 + r0*dg1 + deta0*g2 + k.eta0*dg2
	dfdot := -gm * (dg1/(r0*r) - g1*(dr0*r+r0*dr)/(r0*r*r0*r))
	dgdot := -gm * (dg2/r - g2*dr/(r*r))

	newDpos := pos.Scale(df).Add(dpos.Scale(f)).Add(vel.Scale(dg)).Add(dvel.Scale(g))
	newDvel := pos.Scale(dfdot).Add(dpos.Scale(fdot)).Add(vel.Scale(dgdot)).Add(dvel.Scale(gdot))
	return newDpos, newDvel
}
