package gravity

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
)

// ActiveCount clamps a requested active count to [0, n]. A negative value
// means every particle is active.
func ActiveCount(nActive, n int) int {
	if nActive < 0 || nActive > n {
		return n
	}
	return nActive
}

// Accelerations overwrites A on every particle in ps with the field of the
// first nActive particles.
func Accelerations(ps []particle.Particle, nActive int, g, softening float64) {
	n := len(ps)
	nActive = ActiveCount(nActive, n)
	eps2 := softening * softening

	for i := range ps {
		ps[i].A = particle.Vec3{}
	}

	for j := 0; j < nActive; j++ {
		pj := ps[j].Pos
		for i := j + 1; i < n; i++ {
			dx := pj.X - ps[i].Pos.X
			dy := pj.Y - ps[i].Pos.Y
			dz := pj.Z - ps[i].Pos.Z
			r2 := dx*dx + dy*dy + dz*dz + eps2

			rInv := 1.0 / math.Sqrt(r2)
			r3Inv := rInv * rInv * rInv

			fi := g * ps[j].M * r3Inv
			ps[i].A.X += fi * dx
			ps[i].A.Y += fi * dy
			ps[i].A.Z += fi * dz

			if i < nActive {
				fj := g * ps[i].M * r3Inv
				ps[j].A.X -= fj * dx
				ps[j].A.Y -= fj * dy
				ps[j].A.Z -= fj * dz
			}
		}
	}
}

// Variational overwrites A on every shadow with the tangent acceleration of
// its real counterpart. shadows[k] holds the displacement of real[k]; the
// Jacobian is taken at the real positions.
func Variational(real, shadows []particle.Particle, nActive int, g, softening float64) {
	n := len(shadows)
	if n > len(real) {
		n = len(real)
	}
	nActive = ActiveCount(nActive, n)
	eps2 := softening * softening

	for i := range shadows {
		shadows[i].A = particle.Vec3{}
	}

	for j := 0; j < nActive; j++ {
		for i := j + 1; i < n; i++ {
			dx := real[i].Pos.X - real[j].Pos.X
			dy := real[i].Pos.Y - real[j].Pos.Y
			dz := real[i].Pos.Z - real[j].Pos.Z
			r2 := dx*dx + dy*dy + dz*dz + eps2

			r := math.Sqrt(r2)
			r3Inv := 1.0 / (r * r2)
			r5Inv3 := 3.0 * r3Inv / r2

			ddx := shadows[i].Pos.X - shadows[j].Pos.X
			ddy := shadows[i].Pos.Y - shadows[j].Pos.Y
			ddz := shadows[i].Pos.Z - shadows[j].Pos.Z

			proj := (dx*ddx + dy*ddy + dz*ddz) * r5Inv3
			dax := dx*proj - ddx*r3Inv
			day := dy*proj - ddy*r3Inv
			daz := dz*proj - ddz*r3Inv

			gj := g * real[j].M
			shadows[i].A.X += gj * dax
			shadows[i].A.Y += gj * day
			shadows[i].A.Z += gj * daz

			if i < nActive {
				gi := g * real[i].M
				shadows[j].A.X -= gi * dax
				shadows[j].A.Y -= gi * day
				shadows[j].A.Z -= gi * daz
			}
		}
	}
}
