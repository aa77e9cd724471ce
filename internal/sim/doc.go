// Package sim drives n-body integrations.
//
// A [Simulation] owns the particle store, the physical constants, the
// selected integrator variant and the MEGNO state. [Simulation.Step] advances
// one timestep; [Simulation.Integrate] steps to a target time while checking
// for escapes and close encounters:
//
//	s := sim.New(sim.WithIntegrator(integrators.WHFast), sim.WithDt(0.01))
//	s.Add(particle.Particle{M: 1})
//	s.Add(particle.Orbit2D(s.G(), s.Particle(0), 1e-3, 1, 0.1, 0, 0))
//	status, err := s.Integrate(100, sim.IntegrateOptions{ExactFinish: true})
//
// Independent simulations can be run concurrently with an [Ensemble].
package sim
