package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/sim"
)

const problemYAML = `
name: planet
integrator: whfast
g: 1
dt: 0.05
center_of_momentum: false
megno_delta: 1e-6
seed: 9
bodies:
  - name: star
    m: 1
  - name: planet
    m: 0.001
    orbit: {primary: 0, a: 2, e: 0.1}
  - name: dust
    pos: [5, 0, 0]
    vel: [0, 0.4, 0]
run:
  tmax: 10
  outputs: 5
  exact_finish: true
  max_radius: 50
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	g := NewWithT(t)
	cfg := DefaultConfig()

	g.Expect(cfg.Integrator).To(Equal("leapfrog"))
	g.Expect(cfg.Dt).To(BeNumerically(">", 0))
	g.Expect(cfg.G).To(Equal(1.0))
	g.Expect(cfg.Run.TMax).To(BeNumerically(">", 0))
	g.Expect(cfg.Run.ExactFinish).To(BeTrue())
}

func TestLoad(t *testing.T) {
	g := NewWithT(t)

	cfg, err := Load(writeFile(t, "planet.yaml", problemYAML))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Name).To(Equal("planet"))
	g.Expect(cfg.Bodies).To(HaveLen(3))
	g.Expect(cfg.Bodies[1].Orbit).NotTo(BeNil())
	g.Expect(cfg.Run.Outputs).To(Equal(5))

	ps := cfg.Particles()
	// pericenter of a=2, e=0.1
	g.Expect(ps[1].Pos.X).To(BeNumerically("~", 1.8, 1e-12))
	g.Expect(ps[2].Pos.X).To(Equal(5.0))
	g.Expect(ps[2].Vel.Y).To(Equal(0.4))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no bodies", "dt: 0.1\n"},
		{"zero dt", "dt: 0\nbodies: [{m: 1}]\n"},
		{"negative mass", "bodies: [{m: -1}]\n"},
		{"forward primary", "bodies: [{m: 1, orbit: {primary: 1, a: 1}}, {m: 1}]\n"},
		{"hyperbolic", "bodies: [{m: 1}, {m: 0, orbit: {primary: 0, a: 1, e: 1.5}}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			_, err := Load(writeFile(t, "bad.yaml", tt.yaml))
			g.Expect(err).To(MatchError(ErrInvalidConfig))
		})
	}

	g := NewWithT(t)
	_, err := Load(writeFile(t, "garbage.yaml", "bodies: [[["))
	g.Expect(err).To(HaveOccurred())
}

func TestSaveLoad(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "saved.yaml")

	g.Expect(Save(path, GetPreset("jupiter-saturn"))).To(Succeed())
	cfg, err := Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg).To(Equal(Presets["jupiter-saturn"]))
}

func TestPresets(t *testing.T) {
	g := NewWithT(t)
	g.Expect(ListPresets()).To(Equal([]string{"binary", "figure8", "jupiter-saturn", "kepler", "stark"}))
	g.Expect(GetPreset("missing")).To(BeNil())

	cfg := GetPreset("kepler")
	cfg.Bodies[1].Orbit.A = 99
	g.Expect(Presets["kepler"].Bodies[1].Orbit.A).To(Equal(1.0))

	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		s, err := cfg.Build()
		g.Expect(err).NotTo(HaveOccurred(), name)
		g.Expect(s.N()).To(Equal(len(cfg.Bodies)), name)
		if cfg.MegnoDelta > 0 {
			g.Expect(s.NVar()).To(Equal(s.N()), name)
		}
	}
}

func TestBuild(t *testing.T) {
	g := NewWithT(t)

	cfg, err := Load(writeFile(t, "planet.yaml", problemYAML))
	g.Expect(err).NotTo(HaveOccurred())

	s, err := cfg.Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Integrator()).To(Equal(integrators.WHFast))
	g.Expect(s.Dt()).To(Equal(0.05))
	g.Expect(s.NActive()).To(Equal(3))
	g.Expect(s.NVar()).To(Equal(3))

	status, err := s.Integrate(cfg.Run.TMax, cfg.Run.Options())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(status).To(Equal(sim.StatusOK))
	g.Expect(s.Time()).To(BeNumerically("~", 10, 1e-9))
}

func TestBuild_Options(t *testing.T) {
	g := NewWithT(t)
	cfg := GetPreset("figure8")
	cfg.Active = 2

	s, err := cfg.Build(sim.WithDt(0.002))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Dt()).To(Equal(0.002))
	g.Expect(s.NActive()).To(Equal(2))
	g.Expect(s.Variant().(*integrators.RK45Integrator).Tolerance).To(Equal(1e-10))

	cfg.Integrator = "verlet"
	_, err = cfg.Build()
	g.Expect(err).To(MatchError(integrators.ErrUnknownIntegrator))
}

func TestBuild_Script(t *testing.T) {
	g := NewWithT(t)
	cfg := GetPreset("stark")
	s, err := cfg.Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.HasForces()).To(BeTrue())

	cfg.Script = "function forces("
	_, err = cfg.Build()
	g.Expect(err).To(HaveOccurred())
}

func TestFigure8_ReturnsAfterOnePeriod(t *testing.T) {
	g := NewWithT(t)
	cfg := GetPreset("figure8")
	s, err := cfg.Build()
	g.Expect(err).NotTo(HaveOccurred())
	start := cfg.Particles()

	status, err := s.Integrate(cfg.Run.TMax, cfg.Run.Options())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(status).To(Equal(sim.StatusOK))
	for i, p := range s.Particles() {
		g.Expect(p.Pos.Sub(start[i].Pos).Norm()).To(BeNumerically("<", 1e-3))
	}
}

func TestEnv(t *testing.T) {
	g := NewWithT(t)
	t.Setenv("NBODY_DT", "0.25")
	t.Setenv("NBODY_INTEGRATOR", "rk4")

	e, err := ParseEnv()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(e.DataDir).To(Equal("data"))

	cfg := GetPreset("binary")
	e.Apply(cfg)
	g.Expect(cfg.Dt).To(Equal(0.25))
	g.Expect(cfg.Integrator).To(Equal("rk4"))
	g.Expect(cfg.Run.TMax).To(Equal(Presets["binary"].Run.TMax))

	t.Setenv("NBODY_TMAX", "soon")
	_, err = ParseEnv()
	g.Expect(err).To(MatchError(ContainSubstring("parse env:")))
}
