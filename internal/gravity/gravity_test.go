package gravity

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/nbody/internal/particle"
)

func TestAccelerations_TwoBody(t *testing.T) {
	g := NewWithT(t)

	ps := []particle.Particle{
		{M: 1, Pos: particle.Vec3{}},
		{M: 2, Pos: particle.Vec3{X: 2}},
	}
	Accelerations(ps, -1, 1, 0)

	g.Expect(ps[0].A.X).To(BeNumerically("~", 2.0/4.0, 1e-14))
	g.Expect(ps[1].A.X).To(BeNumerically("~", -1.0/4.0, 1e-14))
	g.Expect(ps[0].A.Y).To(BeZero())
}

func TestAccelerations_ThirdLaw(t *testing.T) {
	g := NewWithT(t)

	ps := []particle.Particle{
		{M: 1.0, Pos: particle.Vec3{X: 0.1, Y: -0.3, Z: 0.2}},
		{M: 0.5, Pos: particle.Vec3{X: 1.2, Y: 0.4, Z: -0.1}},
		{M: 2.0, Pos: particle.Vec3{X: -0.7, Y: 0.9, Z: 0.3}},
		{M: 0.1, Pos: particle.Vec3{X: 0.3, Y: 1.5, Z: -0.8}},
	}
	Accelerations(ps, -1, 1.5, 0.01)

	var total particle.Vec3
	for _, p := range ps {
		total = total.Add(p.A.Scale(p.M))
	}
	g.Expect(total.Norm()).To(BeNumerically("<", 1e-13))
}

func TestAccelerations_TestParticlesAreNotSources(t *testing.T) {
	g := NewWithT(t)

	ps := []particle.Particle{
		{M: 1, Pos: particle.Vec3{}},
		{M: 5, Pos: particle.Vec3{X: 1}},
	}
	Accelerations(ps, 1, 1, 0)

	g.Expect(ps[0].A).To(Equal(particle.Vec3{}), "passive particle must not pull on the source")
	g.Expect(ps[1].A.X).To(BeNumerically("~", -1.0, 1e-14))
}

func TestAccelerations_Softening(t *testing.T) {
	g := NewWithT(t)

	ps := []particle.Particle{
		{M: 1, Pos: particle.Vec3{}},
		{M: 1, Pos: particle.Vec3{X: 1}},
	}
	Accelerations(ps, -1, 1, 1)

	want := 1.0 / math.Pow(2, 1.5)
	g.Expect(ps[0].A.X).To(BeNumerically("~", want, 1e-14))
}

func TestActiveCount(t *testing.T) {
	tests := []struct {
		requested, n, want int
	}{
		{-1, 5, 5},
		{0, 5, 0},
		{3, 5, 3},
		{9, 5, 5},
	}
	for _, tt := range tests {
		if got := ActiveCount(tt.requested, tt.n); got != tt.want {
			t.Errorf("ActiveCount(%d, %d) = %d, want %d", tt.requested, tt.n, got, tt.want)
		}
	}
}

// The variational pass must agree with a central finite difference of the
// real acceleration field along the shadow displacement.
func TestVariational_MatchesFiniteDifference(t *testing.T) {
	g := NewWithT(t)

	real := []particle.Particle{
		{M: 1.0, Pos: particle.Vec3{X: 0.0, Y: 0.0, Z: 0.0}},
		{M: 1e-3, Pos: particle.Vec3{X: 1.0, Y: 0.2, Z: 0.0}},
		{M: 3e-4, Pos: particle.Vec3{X: -0.4, Y: 1.7, Z: 0.1}},
	}
	shadows := []particle.Particle{
		{M: 1.0, Pos: particle.Vec3{X: 0.3, Y: -0.2, Z: 0.1}},
		{M: 1e-3, Pos: particle.Vec3{X: -0.5, Y: 0.4, Z: 0.2}},
		{M: 3e-4, Pos: particle.Vec3{X: 0.1, Y: 0.6, Z: -0.3}},
	}
	const soft = 0.05
	Variational(real, shadows, -1, 1, soft)

	const h = 1e-6
	shifted := func(sign float64) []particle.Particle {
		ps := make([]particle.Particle, len(real))
		copy(ps, real)
		for i := range ps {
			ps[i].Pos = ps[i].Pos.Add(shadows[i].Pos.Scale(sign * h))
		}
		Accelerations(ps, -1, 1, soft)
		return ps
	}
	plus, minus := shifted(1), shifted(-1)

	for i := range real {
		fd := plus[i].A.Sub(minus[i].A).Scale(1 / (2 * h))
		g.Expect(shadows[i].A.Sub(fd).Norm()).To(BeNumerically("<", 1e-6), "shadow %d", i)
	}
}

func TestEnergy_TwoBody(t *testing.T) {
	g := NewWithT(t)

	ps := []particle.Particle{
		{M: 1, Pos: particle.Vec3{}, Vel: particle.Vec3{Y: -1}},
		{M: 1, Pos: particle.Vec3{X: 2}, Vel: particle.Vec3{Y: 1}},
	}
	// kinetic 1, potential -1/2
	g.Expect(Energy(ps, -1, 1, 0)).To(BeNumerically("~", 0.5, 1e-14))
}
