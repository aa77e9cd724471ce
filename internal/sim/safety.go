package sim

import "github.com/san-kum/nbody/internal/particle"

// FindEscape returns the index of the first particle whose distance from the
// origin exceeds maxRadius, or -1.
func FindEscape(ps []particle.Particle, maxRadius float64) int {
	r2 := maxRadius * maxRadius
	for i, p := range ps {
		if p.Pos.Norm2() > r2 {
			return i
		}
	}
	return -1
}

// FindCloseEncounter returns the first pair (i, j), i < j, closer than
// minDistance, scanning i in the outer loop.
func FindCloseEncounter(ps []particle.Particle, minDistance float64) (i, j int, found bool) {
	d2 := minDistance * minDistance
	for i = 0; i < len(ps); i++ {
		for j = i + 1; j < len(ps); j++ {
			if ps[i].Pos.Sub(ps[j].Pos).Norm2() < d2 {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}
