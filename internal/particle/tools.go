package particle

import "math"

// CenterOfMass returns the mass-weighted position and velocity of ps.
// The zero vectors are returned when the total mass is zero.
func CenterOfMass(ps []Particle) (m float64, pos, vel Vec3) {
	for _, p := range ps {
		m += p.M
		pos = pos.Add(p.Pos.Scale(p.M))
		vel = vel.Add(p.Vel.Scale(p.M))
	}
	if m == 0 {
		return 0, Vec3{}, Vec3{}
	}
	return m, pos.Scale(1 / m), vel.Scale(1 / m)
}

// MoveToCenterOfMomentum shifts ps so that the center of mass sits at the
// origin with zero velocity.
func MoveToCenterOfMomentum(ps []Particle) {
	m, pos, vel := CenterOfMass(ps)
	if m == 0 {
		return
	}
	for i := range ps {
		ps[i].Pos = ps[i].Pos.Sub(pos)
		ps[i].Vel = ps[i].Vel.Sub(vel)
	}
}

// Momentum returns the total linear momentum of ps.
func Momentum(ps []Particle) Vec3 {
	var p Vec3
	for _, q := range ps {
		p = p.Add(q.Vel.Scale(q.M))
	}
	return p
}

// Orbit2D builds a particle of mass m on a planar Kepler orbit around
// primary with semi-major axis a, eccentricity e, argument of pericenter
// omega and true anomaly f. The orbit is bound, so e must be in [0,1).
func Orbit2D(g float64, primary Particle, m, a, e, omega, f float64) Particle {
	mu := g * (primary.M + m)
	r := a * (1 - e*e) / (1 + e*math.Cos(f))
	n := math.Sqrt(mu / (a * a * a))
	vFac := n * a / math.Sqrt(1-e*e)

	cosOf, sinOf := math.Cos(omega+f), math.Sin(omega+f)
	cosO, sinO := math.Cos(omega), math.Sin(omega)

	return Particle{
		M: m,
		Pos: Vec3{
			X: primary.Pos.X + r*cosOf,
			Y: primary.Pos.Y + r*sinOf,
			Z: primary.Pos.Z,
		},
		Vel: Vec3{
			X: primary.Vel.X + vFac*(-sinOf-e*sinO),
			Y: primary.Vel.Y + vFac*(cosOf+e*cosO),
			Z: primary.Vel.Z,
		},
	}
}
