package config

import (
	"fmt"

	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/particle"
	"github.com/san-kum/nbody/internal/script"
	"github.com/san-kum/nbody/internal/sim"
)

// Particles resolves every body to Cartesian coordinates.
func (c *Config) Particles() []particle.Particle {
	ps := make([]particle.Particle, len(c.Bodies))
	for i, b := range c.Bodies {
		if o := b.Orbit; o != nil {
			ps[i] = particle.Orbit2D(c.G, ps[o.Primary], b.M, o.A, o.E, o.Omega, o.F)
			continue
		}
		ps[i] = particle.Particle{
			M:   b.M,
			Pos: particle.Vec3{X: b.Pos[0], Y: b.Pos[1], Z: b.Pos[2]},
			Vel: particle.Vec3{X: b.Vel[0], Y: b.Vel[1], Z: b.Vel[2]},
		}
	}
	if c.CenterOfMomentum {
		particle.MoveToCenterOfMomentum(ps)
	}
	return ps
}

// Build returns a simulation ready to integrate. opts are applied after the
// problem's own settings.
func (c *Config) Build(opts ...sim.Option) (*sim.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	kind, err := integrators.ParseKind(c.Integrator)
	if err != nil {
		return nil, fmt.Errorf("problem %q: %w", c.Name, err)
	}

	active := c.Active
	if active <= 0 {
		active = -1
	}
	base := []sim.Option{
		sim.WithIntegrator(kind),
		sim.WithDt(c.Dt),
		sim.WithG(c.G),
		sim.WithSoftening(c.Softening),
		sim.WithActive(active),
	}
	if c.Seed != 0 {
		base = append(base, sim.WithSeed(c.Seed))
	}

	forces, err := c.forces()
	if err != nil {
		return nil, fmt.Errorf("problem %q: %w", c.Name, err)
	}
	if forces != nil {
		base = append(base, sim.WithForces(forces.Apply))
	}

	s := sim.New(append(base, opts...)...)

	if c.Flags != nil {
		s.SetFlags(integrators.Flags{
			ManualSync:          c.Flags.ManualSync,
			PersistentParticles: c.Flags.PersistentParticles,
			VelocityDependent:   c.Flags.VelocityDependent,
		})
	}
	if rk, ok := s.Variant().(*integrators.RK45Integrator); ok && c.Tolerance > 0 {
		rk.Tolerance = c.Tolerance
	}

	s.ReplaceAll(c.Particles())

	if c.MegnoDelta > 0 {
		s.InitMegno(c.MegnoDelta)
	}
	return s, nil
}

func (c *Config) forces() (*script.Forces, error) {
	switch {
	case c.Script != "":
		return script.Load(c.Name+".lua", c.Script)
	case c.ScriptFile != "":
		return script.LoadFile(c.ScriptFile)
	}
	return nil, nil
}
