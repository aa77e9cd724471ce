package integrators

import "github.com/san-kum/nbody/internal/particle"

func drift(ps []particle.Particle, dt float64) {
	for i := range ps {
		ps[i].Pos.X += dt * ps[i].Vel.X
		ps[i].Pos.Y += dt * ps[i].Vel.Y
		ps[i].Pos.Z += dt * ps[i].Vel.Z
	}
}

func kick(ps []particle.Particle, dt float64) {
	for i := range ps {
		ps[i].Vel.X += dt * ps[i].A.X
		ps[i].Vel.Y += dt * ps[i].A.Y
		ps[i].Vel.Z += dt * ps[i].A.Z
	}
}
