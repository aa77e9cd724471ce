package sim

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/particle"
)

func twoBody() *Simulation {
	s := New(WithSeed(3))
	s.Add(particle.Particle{M: 1})
	s.Add(particle.Particle{M: 1e-3, Pos: particle.Vec3{X: 1}, Vel: particle.Vec3{Y: 1}})
	return s
}

func TestNew_Defaults(t *testing.T) {
	s := New()

	if s.Time() != 0 || s.TMax() != 0 {
		t.Errorf("t = %v, tmax = %v", s.Time(), s.TMax())
	}
	if s.Dt() != DefaultDt || s.G() != DefaultG || s.Softening() != 0 {
		t.Errorf("dt = %v, G = %v, softening = %v", s.Dt(), s.G(), s.Softening())
	}
	if s.N() != 0 || s.NVar() != 0 || s.nActive != -1 {
		t.Errorf("N = %d, NVar = %d, nActive = %d", s.N(), s.NVar(), s.nActive)
	}
	if i, j := s.CloseEncounter(); i != -1 || j != -1 {
		t.Errorf("CloseEncounter = (%d, %d)", i, j)
	}
	if s.Integrator() != integrators.Leapfrog {
		t.Errorf("Integrator = %v", s.Integrator())
	}
	if s.Flags() != integrators.DefaultFlags() {
		t.Errorf("Flags = %+v", s.Flags())
	}
}

func TestReset_RestoresDefaults(t *testing.T) {
	s := twoBody()
	s.SetDt(0.5)
	s.SetG(2)
	s.SetSoftening(0.1)
	s.SetActive(1)
	s.SetFlags(integrators.Flags{ManualSync: true})
	s.InitMegno(1e-6)
	if _, err := s.Integrate(3, IntegrateOptions{MinDistance: 10}); err != nil {
		t.Fatal(err)
	}

	s.Reset()

	if s.Time() != 0 || s.TMax() != 0 || s.Timing() != 0 {
		t.Errorf("t = %v, tmax = %v, timing = %v", s.Time(), s.TMax(), s.Timing())
	}
	if s.Dt() != DefaultDt || s.G() != DefaultG || s.Softening() != 0 {
		t.Errorf("dt = %v, G = %v, softening = %v", s.Dt(), s.G(), s.Softening())
	}
	if s.N() != 0 || s.NVar() != 0 || s.nActive != -1 {
		t.Errorf("N = %d, NVar = %d, nActive = %d", s.N(), s.NVar(), s.nActive)
	}
	if i, j := s.CloseEncounter(); i != -1 || j != -1 {
		t.Errorf("CloseEncounter = (%d, %d)", i, j)
	}
	if s.Megno() != 0 || s.megno.Samples() != 0 {
		t.Errorf("MEGNO not cleared")
	}
	if s.Flags() != integrators.DefaultFlags() {
		t.Errorf("Flags = %+v", s.Flags())
	}
}

func TestStep_NoParticles(t *testing.T) {
	var buf bytes.Buffer
	s := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	if got := s.Step(); got != StatusNoParticles {
		t.Errorf("Step() = %v, want %v", got, StatusNoParticles)
	}
	if s.Time() != 0 {
		t.Errorf("time advanced to %v", s.Time())
	}
	if !strings.Contains(buf.String(), "no particles") {
		t.Errorf("expected an error log, got %q", buf.String())
	}
}

func TestStep_AdvancesTime(t *testing.T) {
	s := twoBody()
	if got := s.Step(); got != StatusOK {
		t.Fatalf("Step() = %v", got)
	}
	if s.Time() != s.Dt() {
		t.Errorf("t = %v, want %v", s.Time(), s.Dt())
	}
	if s.Timing() <= 0 {
		t.Errorf("timing not recorded")
	}
}

func TestParticle_ReturnsCopy(t *testing.T) {
	s := twoBody()
	p := s.Particle(1)
	p.Pos.X = 42

	if s.Particle(1).Pos.X != 1 {
		t.Error("Particle should return a copy")
	}

	s.Particles()[1].Pos.X = 2
	if s.Particle(1).Pos.X != 2 {
		t.Error("Particles should return the live slice")
	}
}

func TestReplaceAll(t *testing.T) {
	s := twoBody()
	s.InitMegno(1e-6)
	shadows := append([]particle.Particle(nil), s.Shadows()...)

	moved := append([]particle.Particle(nil), s.Particles()...)
	moved[1].Pos.X = 3
	s.modified = false
	s.ReplaceAll(moved)

	if !s.modified {
		t.Error("ReplaceAll should mark particles modified")
	}
	if s.NVar() != 2 || s.Shadows()[0] != shadows[0] {
		t.Error("shadows should survive a same-size replace")
	}
	moved[1].Pos.X = 4
	if s.Particle(1).Pos.X != 3 {
		t.Error("ReplaceAll should copy its input")
	}

	s.ReplaceAll(moved[:1])
	if s.N() != 1 || s.NVar() != 0 {
		t.Errorf("N = %d, NVar = %d after shrinking replace", s.N(), s.NVar())
	}
}

func TestAdd_DisablesMegno(t *testing.T) {
	s := twoBody()
	s.InitMegno(1e-6)
	s.Add(particle.Particle{M: 1e-6, Pos: particle.Vec3{X: 5}})

	if s.NVar() != 0 || s.N() != 3 {
		t.Errorf("N = %d, NVar = %d", s.N(), s.NVar())
	}
	if s.Particle(2).Pos.X != 5 {
		t.Error("added particle should follow the real particles")
	}
}

func TestInitMegno_ShadowsMirrorMasses(t *testing.T) {
	s := twoBody()
	s.InitMegno(1e-6)
	s.InitMegno(1e-6)

	if s.NVar() != 2 || len(s.Shadows()) != 2 {
		t.Fatalf("NVar = %d, want 2", s.NVar())
	}
	for i, sh := range s.Shadows() {
		if sh.M != s.Particle(i).M {
			t.Errorf("shadow %d mass = %v", i, sh.M)
		}
	}
}

func TestSetIntegrator(t *testing.T) {
	s := twoBody()
	if err := s.SetIntegrator(integrators.WHFast); err != nil {
		t.Fatal(err)
	}
	if s.Integrator() != integrators.WHFast {
		t.Errorf("Integrator = %v", s.Integrator())
	}
	if err := s.SetIntegrator(integrators.Kind(42)); !errors.Is(err, integrators.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func TestActiveParticles(t *testing.T) {
	s := twoBody()
	s.SetActive(1)
	for i := 0; i < 100; i++ {
		s.Step()
	}

	// the planet is a test particle and does not pull the star
	if s.Particle(0).Pos.Norm() != 0 {
		t.Errorf("star moved to %v", s.Particle(0).Pos)
	}
	if s.NActive() != 1 {
		t.Errorf("NActive = %d", s.NActive())
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status Status
		name   string
		err    error
	}{
		{StatusOK, "ok", nil},
		{StatusNoParticles, "no particles", ErrNoParticles},
		{StatusEscape, "escape", ErrEscape},
		{StatusCloseEncounter, "close encounter", ErrCloseEncounter},
	}
	for _, tt := range tests {
		if tt.status.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.status.String(), tt.name)
		}
		if !errors.Is(tt.status.Err(), tt.err) {
			t.Errorf("%v.Err() = %v, want %v", tt.status, tt.status.Err(), tt.err)
		}
	}
	if int(StatusEscape) != 2 || int(StatusCloseEncounter) != 3 {
		t.Error("status codes changed")
	}
}
