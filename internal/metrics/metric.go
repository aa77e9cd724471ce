package metrics

import "github.com/san-kum/nbody/internal/sim"

type Metric interface {
	Name() string
	Observe(s *sim.Simulation)
	Value() float64
	Reset()
}

// Observer feeds every step of a simulation to ms.
func Observer(ms ...Metric) sim.Observer {
	return sim.ObserverFunc(func(s *sim.Simulation) {
		for _, m := range ms {
			m.Observe(s)
		}
	})
}

// Values collects the current value of each metric by name.
func Values(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Default is the metric set reported by the CLI.
func Default() []Metric {
	return []Metric{
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewMaxRadius(),
		NewMinSeparation(),
		NewMegno(),
		NewLyapunov(),
	}
}
