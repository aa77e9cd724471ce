package gravity

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
)

// Energy returns kinetic plus softened potential energy. The potential only
// includes pairs with at least one active member, matching the force law.
func Energy(ps []particle.Particle, nActive int, g, softening float64) float64 {
	n := len(ps)
	nActive = ActiveCount(nActive, n)
	eps2 := softening * softening

	ke := 0.0
	pe := 0.0
	for i := 0; i < n; i++ {
		ke += 0.5 * ps[i].M * ps[i].Vel.Norm2()
	}
	for j := 0; j < nActive; j++ {
		for i := j + 1; i < n; i++ {
			r := math.Sqrt(ps[i].Pos.Sub(ps[j].Pos).Norm2() + eps2)
			pe -= g * ps[i].M * ps[j].M / r
		}
	}
	return ke + pe
}
