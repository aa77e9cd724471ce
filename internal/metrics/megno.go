package metrics

import "github.com/san-kum/nbody/internal/sim"

// Megno reports the simulation's MEGNO at the last observation.
type Megno struct {
	name  string
	value float64
}

func NewMegno() *Megno { return &Megno{name: "megno"} }

func (m *Megno) Name() string              { return m.name }
func (m *Megno) Observe(s *sim.Simulation) { m.value = s.Megno() }
func (m *Megno) Value() float64            { return m.value }
func (m *Megno) Reset()                    { m.value = 0 }

// Lyapunov reports the Lyapunov exponent estimate at the last observation.
type Lyapunov struct {
	name  string
	value float64
}

func NewLyapunov() *Lyapunov { return &Lyapunov{name: "lyapunov"} }

func (l *Lyapunov) Name() string              { return l.name }
func (l *Lyapunov) Observe(s *sim.Simulation) { l.value = s.Lyapunov() }
func (l *Lyapunov) Value() float64            { return l.value }
func (l *Lyapunov) Reset()                    { l.value = 0 }
