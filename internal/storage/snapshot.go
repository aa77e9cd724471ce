package storage

import (
	"github.com/san-kum/nbody/internal/particle"
	"github.com/san-kum/nbody/internal/sim"
)

// Snapshot is the state of the real particles at one output time.
type Snapshot struct {
	Time      float64             `json:"time"`
	Energy    float64             `json:"energy"`
	Megno     float64             `json:"megno"`
	Particles []particle.Particle `json:"particles"`
}

// Capture copies the current state of s.
func Capture(s *sim.Simulation) Snapshot {
	return Snapshot{
		Time:      s.Time(),
		Energy:    s.Energy(),
		Megno:     s.Megno(),
		Particles: append([]particle.Particle(nil), s.Particles()...),
	}
}

// Track returns the positions of particle i across snaps.
func Track(snaps []Snapshot, i int) []particle.Vec3 {
	out := make([]particle.Vec3, 0, len(snaps))
	for _, s := range snaps {
		if i < len(s.Particles) {
			out = append(out, s.Particles[i].Pos)
		}
	}
	return out
}

func decodeRow(vals []float64, n int) Snapshot {
	snap := Snapshot{
		Time:      vals[0],
		Energy:    vals[1],
		Megno:     vals[2],
		Particles: make([]particle.Particle, n),
	}
	for i := 0; i < n; i++ {
		c := vals[leadingColumns+i*particleColumns:]
		snap.Particles[i] = particle.Particle{
			M:   c[0],
			Pos: particle.Vec3{X: c[1], Y: c[2], Z: c[3]},
			Vel: particle.Vec3{X: c[4], Y: c[5], Z: c[6]},
		}
	}
	return snap
}
