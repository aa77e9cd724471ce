package analysis

import (
	"math/rand"

	"github.com/san-kum/nbody/internal/particle"
)

// TangentRatio returns (δ·δ̇)/(δ·δ) for a set of shadow particles, where
// δ = (δx, δv) and δ̇ = (δv, δa). A zero tangent vector yields 0.
func TangentRatio(shadows []particle.Particle) float64 {
	var deltad, delta2 float64
	for _, s := range shadows {
		deltad += s.Pos.Dot(s.Vel) + s.Vel.Dot(s.A)
		delta2 += s.Pos.Norm2() + s.Vel.Norm2()
	}
	if delta2 == 0 {
		return 0
	}
	return deltad / delta2
}

// Shadows builds one shadow per real particle. Each carries the mass of its
// counterpart and a displacement whose components are delta·N(0,1).
func Shadows(rng *rand.Rand, real []particle.Particle, delta float64) []particle.Particle {
	gauss := func() particle.Vec3 {
		return particle.Vec3{
			X: delta * rng.NormFloat64(),
			Y: delta * rng.NormFloat64(),
			Z: delta * rng.NormFloat64(),
		}
	}

	out := make([]particle.Particle, len(real))
	for i, p := range real {
		out[i] = particle.Particle{
			M:   p.M,
			Pos: gauss(),
			Vel: gauss(),
		}
	}
	return out
}
