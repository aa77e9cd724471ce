package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/nbody/internal/particle"
)

func TestMegno_ZeroAtStart(t *testing.T) {
	var m Megno
	if m.Value(0) != 0 || m.Lyapunov() != 0 {
		t.Fatalf("fresh accumulator should report zeros")
	}

	m.Update(0, 0.1, 5)
	if m.Value(0) != 0 {
		t.Errorf("Value(0) = %v, want 0", m.Value(0))
	}
}

func TestMegno_RegularOrbitTendsToTwo(t *testing.T) {
	var m Megno
	dt := 0.01
	// a tangent vector growing linearly in time: ratio = 1/t
	for i := 1; i <= 10000; i++ {
		ti := float64(i) * dt
		m.Update(ti, dt, 1/ti)
	}

	if got := m.Value(100); math.Abs(got-2) > 1e-9 {
		t.Errorf("MEGNO = %v, want 2", got)
	}
	if math.Abs(m.Lyapunov()) > 1e-9 {
		t.Errorf("Lyapunov = %v, want 0", m.Lyapunov())
	}
}

func TestMegno_ChaoticOrbitGrowsLinearly(t *testing.T) {
	var m Megno
	dt := 0.01
	lambda := 0.3
	for i := 1; i <= 20000; i++ {
		m.Update(float64(i)*dt, dt, lambda)
	}

	// <Y> ~ λt/2
	if got, want := m.Value(200), lambda*200/2; math.Abs(got-want)/want > 0.01 {
		t.Errorf("MEGNO = %v, want about %v", got, want)
	}
	if got := m.Lyapunov(); math.Abs(got-lambda/2)/(lambda/2) > 0.01 {
		t.Errorf("Lyapunov slope = %v, want about %v", got, lambda/2)
	}
	if m.Samples() != 20000 {
		t.Errorf("Samples = %d", m.Samples())
	}

	m.Reset()
	if m.Value(200) != 0 || m.Samples() != 0 {
		t.Error("Reset did not clear the accumulator")
	}
}

func TestTangentRatio(t *testing.T) {
	shadows := []particle.Particle{
		{Pos: particle.Vec3{X: 1}, Vel: particle.Vec3{X: 2}, A: particle.Vec3{X: -1}},
	}
	// (1*2 + 2*-1) / (1 + 4)
	if got := TangentRatio(shadows); got != 0 {
		t.Errorf("TangentRatio = %v, want 0", got)
	}

	shadows[0].A = particle.Vec3{X: 3}
	if got := TangentRatio(shadows); math.Abs(got-8.0/5.0) > 1e-15 {
		t.Errorf("TangentRatio = %v, want 1.6", got)
	}

	if got := TangentRatio([]particle.Particle{{}}); got != 0 {
		t.Errorf("zero tangent vector: got %v", got)
	}
}

func TestShadows(t *testing.T) {
	real := []particle.Particle{{M: 1}, {M: 1e-3}}
	a := Shadows(rand.New(rand.NewSource(7)), real, 1e-6)
	b := Shadows(rand.New(rand.NewSource(7)), real, 1e-6)

	for i := range real {
		if a[i].M != real[i].M {
			t.Errorf("shadow %d mass = %v, want %v", i, a[i].M, real[i].M)
		}
		if a[i] != b[i] {
			t.Errorf("shadow %d not reproducible from the seed", i)
		}
		if a[i].Pos.Norm() == 0 || a[i].Pos.Norm() > 1e-4 {
			t.Errorf("shadow %d displacement %v out of scale", i, a[i].Pos)
		}
	}
}

func TestDominantPeriod(t *testing.T) {
	dt := 0.01
	samples := make([]float64, 3000)
	for i := range samples {
		samples[i] = math.Sin(2*math.Pi*float64(i)*dt/3) + 4
	}

	if got := DominantPeriod(samples, dt); math.Abs(got-3)/3 > 0.05 {
		t.Errorf("DominantPeriod = %v, want about 3", got)
	}
	if got := DominantPeriod(make([]float64, 64), dt); got != 0 {
		t.Errorf("flat series: got %v, want 0", got)
	}
	if f, p := Spectrum([]float64{1}, dt); f != nil || p != nil {
		t.Error("single sample should produce no spectrum")
	}
}
