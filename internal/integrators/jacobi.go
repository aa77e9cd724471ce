package integrators

import "github.com/san-kum/nbody/internal/particle"

// jacobiMasses fills the interior masses eta[i] = m[0] + ... + m[i].
func jacobiMasses(m, eta []float64) {
	sum := 0.0
	for i, mi := range m {
		sum += mi
		eta[i] = sum
	}
}

// toJacobi transforms Cartesian vectors into Jacobi coordinates. Entry 0 of
// the result is the centre of mass; entry i is measured from the centre of
// mass of bodies 0..i-1. Positions, velocities and accelerations all use the
// same transform.
func toJacobi(in []particle.Vec3, m, eta []float64, out []particle.Vec3) {
	if len(in) == 0 {
		return
	}
	com := in[0]
	for i := 1; i < len(in); i++ {
		out[i] = in[i].Sub(com)
		if eta[i] > 0 {
			com = com.Add(out[i].Scale(m[i] / eta[i]))
		}
	}
	out[0] = com
}

// fromJacobi is the inverse of toJacobi.
func fromJacobi(in []particle.Vec3, m, eta []float64, out []particle.Vec3) {
	if len(in) == 0 {
		return
	}
	com := in[0]
	for i := len(in) - 1; i > 0; i-- {
		if eta[i] > 0 {
			com = com.Sub(in[i].Scale(m[i] / eta[i]))
		}
		out[i] = in[i].Add(com)
	}
	out[0] = com
}
