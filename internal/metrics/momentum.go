package metrics

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
	"github.com/san-kum/nbody/internal/sim"
)

// MomentumDrift is the largest change in total linear momentum seen since the
// first observation. Extra forces are the only way to make it grow.
type MomentumDrift struct {
	name    string
	initial particle.Vec3
	max     float64
	samples int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s *sim.Simulation) {
	p := particle.Momentum(s.Particles())
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.max = math.Max(m.max, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.max }

func (m *MomentumDrift) Reset() {
	m.initial = particle.Vec3{}
	m.max = 0
	m.samples = 0
}
