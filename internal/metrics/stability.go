package metrics

import (
	"math"

	"github.com/san-kum/nbody/internal/sim"
)

// MaxRadius tracks the largest distance of any particle from the origin.
type MaxRadius struct {
	name string
	r2   float64
}

func NewMaxRadius() *MaxRadius {
	return &MaxRadius{name: "max_radius"}
}

func (m *MaxRadius) Name() string { return m.name }

func (m *MaxRadius) Observe(s *sim.Simulation) {
	for _, p := range s.Particles() {
		m.r2 = math.Max(m.r2, p.Pos.Norm2())
	}
}

func (m *MaxRadius) Value() float64 { return math.Sqrt(m.r2) }
func (m *MaxRadius) Reset()         { m.r2 = 0 }

// MinSeparation tracks the closest approach between any two particles. It
// is zero until a pair has been observed.
type MinSeparation struct {
	name    string
	d2      float64
	samples int
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation"}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(s *sim.Simulation) {
	ps := s.Particles()
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			d2 := ps[i].Pos.Sub(ps[j].Pos).Norm2()
			if m.samples == 0 || d2 < m.d2 {
				m.d2 = d2
			}
			m.samples++
		}
	}
}

func (m *MinSeparation) Value() float64 { return math.Sqrt(m.d2) }

func (m *MinSeparation) Reset() {
	m.d2 = 0
	m.samples = 0
}
