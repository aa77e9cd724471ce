package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Config{
	"binary": {
		Name: "binary", Description: "equal-mass circular binary",
		Integrator: "leapfrog", G: 1, Dt: 0.01,
		Bodies: []BodyConfig{
			{Name: "a", M: 0.5, Pos: [3]float64{-0.5, 0, 0}, Vel: [3]float64{0, -0.5, 0}},
			{Name: "b", M: 0.5, Pos: [3]float64{0.5, 0, 0}, Vel: [3]float64{0, 0.5, 0}},
		},
		Run: RunConfig{TMax: 20 * math.Pi, Outputs: 200, ExactFinish: true},
	},
	"kepler": {
		Name: "kepler", Description: "test particle on an eccentric orbit, WHFast",
		Integrator: "whfast", G: 1, Dt: 0.01, MegnoDelta: 1e-6, Seed: 1,
		Bodies: []BodyConfig{
			{Name: "star", M: 1},
			{Name: "comet", Orbit: &OrbitConfig{Primary: 0, A: 1, E: 0.7}},
		},
		Run: RunConfig{TMax: 200 * math.Pi, Outputs: 200, ExactFinish: true},
	},
	"stark": {
		Name: "stark", Description: "Kepler orbit under a constant external force",
		Integrator: "whfast", G: 1, Dt: 0.002, MegnoDelta: 1e-6, Seed: 1,
		CenterOfMomentum: true,
		Script: `function forces(p, t)
    p:add_accel(2, 0.12 / 6.0, 0, 0)
end
`,
		Bodies: []BodyConfig{
			{Name: "star", M: 1},
			{Name: "planet", Pos: [3]float64{1, 0, 0}, Vel: [3]float64{0, 1.2, 0}},
		},
		Run: RunConfig{TMax: 100, Outputs: 200, ExactFinish: true},
	},
	"jupiter-saturn": {
		Name: "jupiter-saturn", Description: "Sun, Jupiter and Saturn with MEGNO",
		Integrator: "whfast", G: 1, Dt: 1, MegnoDelta: 1e-6, Seed: 1,
		CenterOfMomentum: true,
		Bodies: []BodyConfig{
			{Name: "sun", M: 1},
			{Name: "jupiter", M: 0.000954, Orbit: &OrbitConfig{Primary: 0, A: 5.204, E: 0.048, Omega: 0.257, F: 0.600}},
			{Name: "saturn", M: 0.000285, Orbit: &OrbitConfig{Primary: 0, A: 9.583, E: 0.056, Omega: 1.616, F: 0.871}},
		},
		Run: RunConfig{TMax: 2000 * math.Pi, Outputs: 200, ExactFinish: true, MaxRadius: 100},
	},
	"figure8": {
		Name: "figure8", Description: "three-body figure-eight choreography",
		Integrator: "rk45", G: 1, Dt: 0.001, Tolerance: 1e-10,
		Bodies: []BodyConfig{
			{M: 1, Pos: [3]float64{0.97000436, -0.24308753, 0}, Vel: [3]float64{0.466203685, 0.43236573, 0}},
			{M: 1, Pos: [3]float64{-0.97000436, 0.24308753, 0}, Vel: [3]float64{0.466203685, 0.43236573, 0}},
			{M: 1, Vel: [3]float64{-0.93240737, -0.86473146, 0}},
		},
		Run: RunConfig{TMax: 6.32591398, Outputs: 200, ExactFinish: true, MinDistance: 1e-3},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
