package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/particle"
	"github.com/san-kum/nbody/internal/sim"
)

// binary is an equal-mass circular binary with period 2π.
func binary(opts ...sim.Option) *sim.Simulation {
	s := sim.New(opts...)
	s.Add(particle.Particle{M: 0.5, Pos: particle.Vec3{X: -0.5}, Vel: particle.Vec3{Y: -0.5}})
	s.Add(particle.Particle{M: 0.5, Pos: particle.Vec3{X: 0.5}, Vel: particle.Vec3{Y: 0.5}})
	return s
}

// planets is a Sun, Jupiter and Saturn on circular orbits in units where the
// Sun's mass and G are 1.
func planets(opts ...sim.Option) *sim.Simulation {
	s := sim.New(opts...)
	s.Add(particle.Particle{M: 1})
	for _, p := range []struct{ m, a float64 }{{9.5e-4, 5.2}, {2.9e-4, 9.58}} {
		s.Add(particle.Particle{
			M:   p.m,
			Pos: particle.Vec3{X: p.a},
			Vel: particle.Vec3{Y: math.Sqrt((1 + p.m) / p.a)},
		})
	}
	particle.MoveToCenterOfMomentum(s.Particles())
	return s
}

var _ = Describe("Integrate", func() {
	var kinds = []integrators.Kind{
		integrators.Leapfrog,
		integrators.Euler,
		integrators.WHFast,
		integrators.RK4,
		integrators.RK45,
	}

	Context("with exact finish", func() {
		for _, k := range kinds {
			It("lands on tmax and restores dt with "+k.String(), func() {
				s := binary(sim.WithIntegrator(k), sim.WithDt(0.1))

				status, err := s.Integrate(1.2345, sim.IntegrateOptions{ExactFinish: true})
				Expect(err).NotTo(HaveOccurred())
				Expect(status).To(Equal(sim.StatusOK))
				Expect(s.Time()).To(BeNumerically("~", 1.2345, 1e-12))
				if k != integrators.RK45 {
					Expect(s.Dt()).To(Equal(0.1))
				}
			})
		}
	})

	Context("without exact finish", func() {
		It("overshoots by less than one step", func() {
			s := binary(sim.WithDt(0.1))

			_, err := s.Integrate(1.2345, sim.IntegrateOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Time()).To(BeNumerically(">=", 1.2345))
			Expect(s.Time()).To(BeNumerically("<", 1.2345+0.1))
		})

		It("does nothing when tmax is already reached", func() {
			s := binary()
			s.SetTime(5)

			status, err := s.Integrate(1, sim.IntegrateOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(sim.StatusOK))
			Expect(s.Time()).To(Equal(5.0))
		})
	})

	It("conserves energy of a circular binary with leapfrog", func() {
		s := binary(sim.WithDt(0.01))
		e0 := s.Energy()

		_, err := s.Integrate(100, sim.IntegrateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Abs((s.Energy() - e0) / e0)).To(BeNumerically("<", 1e-4))
	})

	It("returns a synchronized state that Synchronize does not change", func() {
		s := binary(sim.WithIntegrator(integrators.WHFast), sim.WithDt(0.05))

		_, err := s.Integrate(10, sim.IntegrateOptions{})
		Expect(err).NotTo(HaveOccurred())

		before := append([]particle.Particle(nil), s.Particles()...)
		s.Synchronize()
		s.Synchronize()
		for i, p := range s.Particles() {
			Expect(p.Pos).To(Equal(before[i].Pos))
			Expect(p.Vel).To(Equal(before[i].Vel))
		}
	})

	It("reports an escape", func() {
		s := sim.New()
		s.Add(particle.Particle{M: 1})
		s.Add(particle.Particle{Pos: particle.Vec3{X: 1}, Vel: particle.Vec3{X: 10}})

		status, err := s.Integrate(100, sim.IntegrateOptions{MaxRadius: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(sim.StatusEscape))
		Expect(status.Err()).To(MatchError(sim.ErrEscape))
		Expect(s.Escape()).To(Equal(1))
		Expect(s.Time()).To(BeNumerically("<", 100))
		Expect(s.Particle(1).Pos.Norm()).To(BeNumerically(">", 5))
	})

	It("reports an escape on the first call for a body at rest beyond the radius", func() {
		start := particle.Vec3{X: 7, Y: -2}
		s := sim.New()
		s.Add(particle.Particle{M: 1, Pos: start})

		status, err := s.Integrate(1, sim.IntegrateOptions{MaxRadius: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(sim.StatusEscape))
		Expect(s.Escape()).To(Equal(0))
		Expect(s.Time()).To(Equal(s.Dt()))
		Expect(s.Particle(0).Pos).To(Equal(start))
	})

	It("reports a close encounter on the first call for bodies placed inside the distance", func() {
		s := sim.New(sim.WithDt(0.001))
		s.Add(particle.Particle{M: 1e-3, Pos: particle.Vec3{X: -0.01}})
		s.Add(particle.Particle{M: 1e-3, Pos: particle.Vec3{X: 0.01}})

		status, err := s.Integrate(1, sim.IntegrateOptions{MinDistance: 0.05})
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(sim.StatusCloseEncounter))
		Expect(s.Time()).To(Equal(s.Dt()))
		i, j := s.CloseEncounter()
		Expect([]int{i, j}).To(Equal([]int{0, 1}))
	})

	It("reports a close encounter with the first pair", func() {
		s := sim.New(sim.WithDt(0.001))
		s.Add(particle.Particle{M: 1, Pos: particle.Vec3{X: -1}})
		s.Add(particle.Particle{M: 1, Pos: particle.Vec3{X: 1}})

		status, err := s.Integrate(10, sim.IntegrateOptions{MinDistance: 0.5})
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(sim.StatusCloseEncounter))
		i, j := s.CloseEncounter()
		Expect([]int{i, j}).To(Equal([]int{0, 1}))
	})

	It("reports an empty store", func() {
		s := sim.New()
		status, err := s.Integrate(1, sim.IntegrateOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(sim.StatusNoParticles))
		Expect(s.Time()).To(Equal(0.0))
	})

	It("rejects a timestep that cannot reach tmax", func() {
		for _, dt := range []float64{0, -0.1, math.NaN()} {
			s := binary(sim.WithDt(dt))
			_, err := s.Integrate(1, sim.IntegrateOptions{})
			Expect(err).To(MatchError(sim.ErrInvalidTimestep))
			Expect(s.Time()).To(Equal(0.0))
		}
	})

	Describe("integrator flags", func() {
		var seen []integrators.Flags

		record := func(s *sim.Simulation) { seen = append(seen, s.Flags()) }

		BeforeEach(func() {
			seen = nil
		})

		It("runs unsynchronized without a force hook and restores the caller's flags", func() {
			s := binary(sim.WithObserver(sim.ObserverFunc(record)))
			callers := s.Flags()

			_, err := s.Integrate(0.1, sim.IntegrateOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).NotTo(BeEmpty())
			Expect(seen[0]).To(Equal(integrators.Flags{ManualSync: true, PersistentParticles: true}))
			Expect(s.Flags()).To(Equal(callers))
		})

		It("keeps the store synchronized on request", func() {
			s := binary(sim.WithObserver(sim.ObserverFunc(record)))

			_, err := s.Integrate(0.1, sim.IntegrateOptions{KeepSynchronized: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen[0].ManualSync).To(BeFalse())
			Expect(seen[0].PersistentParticles).To(BeFalse())
		})

		It("shows observers a synchronized store in performance mode", func() {
			s := planets(sim.WithIntegrator(integrators.WHFast), sim.WithDt(0.05))
			e0 := s.Energy()
			worst := 0.0
			s.AddObserver(sim.ObserverFunc(func(s *sim.Simulation) {
				worst = math.Max(worst, math.Abs((s.Energy()-e0)/e0))
			}))

			_, err := s.Integrate(200, sim.IntegrateOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Flags().ManualSync).To(BeFalse())
			Expect(worst).To(BeNumerically("<", 1e-5))
		})

		It("keeps velocity dependence when a force hook is installed", func() {
			calls := 0
			s := binary(
				sim.WithObserver(sim.ObserverFunc(record)),
				sim.WithForces(func(*sim.Simulation) { calls++ }),
			)

			_, err := s.Integrate(0.1, sim.IntegrateOptions{ExactFinish: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen[0].VelocityDependent).To(BeTrue())
			Expect(calls).To(Equal(len(seen)))
		})
	})

	Describe("MEGNO", func() {
		It("is zero before any time has elapsed", func() {
			s := binary(sim.WithSeed(1))
			s.InitMegno(1e-6)
			Expect(s.NVar()).To(Equal(2))
			Expect(s.Megno()).To(Equal(0.0))
			Expect(s.Lyapunov()).To(Equal(0.0))
		})

		It("settles near two for a regular orbit", func() {
			s := binary(sim.WithSeed(1), sim.WithIntegrator(integrators.WHFast), sim.WithDt(0.05))
			s.InitMegno(1e-6)

			status, err := s.Integrate(300, sim.IntegrateOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(sim.StatusOK))
			Expect(s.Megno()).To(BeNumerically("~", 2, 0.5))
			Expect(math.Abs(s.Lyapunov())).To(BeNumerically("<", 0.05))
		})

		for _, k := range []integrators.Kind{integrators.Leapfrog, integrators.WHFast, integrators.RK45} {
			It("stays bounded near two for a circular binary with "+k.String(), func() {
				s := binary(sim.WithSeed(3), sim.WithIntegrator(k), sim.WithDt(0.05))
				s.InitMegno(1e-6)

				for _, tmax := range []float64{100, 1000} {
					status, err := s.Integrate(tmax, sim.IntegrateOptions{})
					Expect(err).NotTo(HaveOccurred())
					Expect(status).To(Equal(sim.StatusOK))
					Expect(s.Megno()).To(BeNumerically("~", 2, 0.25), "t = %v", tmax)
				}
			})
		}

		It("grows for a tightly packed planetary system", func() {
			s := sim.New(sim.WithSeed(1), sim.WithDt(0.01), sim.WithSoftening(0.01))
			s.Add(particle.Particle{M: 1})
			for _, a := range []float64{1, 1.1, 1.2} {
				s.Add(particle.Particle{
					M:   1e-3,
					Pos: particle.Vec3{X: a},
					Vel: particle.Vec3{Y: math.Sqrt(1 / a)},
				})
			}
			s.InitMegno(1e-6)

			status, err := s.Integrate(500, sim.IntegrateOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(sim.StatusOK))
			Expect(math.IsNaN(s.Megno())).To(BeFalse())
			Expect(s.Megno()).To(BeNumerically(">", 4))
			Expect(s.Lyapunov()).To(BeNumerically(">", 0))
		})

		It("is not scanned for escapes", func() {
			s := binary(sim.WithSeed(1))
			s.InitMegno(100)

			status, err := s.Integrate(1, sim.IntegrateOptions{MaxRadius: 10, MinDistance: 1e-3})
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(sim.StatusOK))
		})
	})
})
