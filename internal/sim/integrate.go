package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/nbody/internal/analysis"
)

// Step advances the simulation by one timestep: the integrator's first half,
// the force evaluation, the MEGNO update and the second half. The store is
// only guaranteed to be synchronized if ManualSync is off or an observer is
// attached.
func (s *Simulation) Step() Status {
	start := time.Now()
	defer func() { s.timing = time.Since(start) }()

	if s.store.Len() == 0 {
		s.log.Error("no particles found")
		return StatusNoParticles
	}
	s.step()
	return StatusOK
}

func (s *Simulation) step() {
	sys := s.system()
	s.integ.Part1(sys)
	s.computeForces()
	if s.nVar > 0 {
		s.megno.Update(s.t, s.dt, analysis.TangentRatio(s.Shadows()))
	}
	s.integ.Part2(sys)

	if len(s.observers) == 0 {
		return
	}
	if s.flags.ManualSync {
		s.integ.Synchronize(sys)
	}
	for _, o := range s.observers {
		o.OnStep(s)
	}
}

// Integrate steps until the time reaches tmax or a check fails. With
// ExactFinish the last steps are shortened to land on tmax; otherwise the
// final time overshoots by less than one step. The store is synchronized and
// the caller's timestep and integrator flags are restored on return.
func (s *Simulation) Integrate(tmax float64, opts IntegrateOptions) (Status, error) {
	if err := s.checkTimestep(tmax); err != nil {
		return StatusOK, err
	}

	start := time.Now()
	sys := s.system()

	s.tmax = tmax
	dtLastDone := s.dt
	s.modified = true
	s.encI, s.encJ = -1, -1
	s.escaped = -1

	saved := s.flags
	if s.nVar > 0 || opts.KeepSynchronized {
		s.flags.ManualSync = false
		s.flags.PersistentParticles = false
	} else {
		s.flags.ManualSync = true
		s.flags.PersistentParticles = true
	}
	if s.forces == nil {
		s.flags.VelocityDependent = false
	}

	status := StatusOK
	lastStep := 0
	steps := 0
	for s.t < tmax && lastStep < 2 && status == StatusOK {
		if s.store.Len() == 0 {
			s.log.Error("no particles found")
			status = StatusNoParticles
			break
		}

		s.step()
		steps++

		if opts.ExactFinish && s.t+s.dt >= tmax {
			s.integ.Synchronize(sys)
			s.dt = tmax - s.t
			lastStep++
		} else {
			dtLastDone = s.dt
		}

		if opts.MaxRadius != 0 {
			if i := FindEscape(s.Particles(), opts.MaxRadius); i >= 0 {
				s.escaped = i
				status = StatusEscape
			}
		}
		if opts.MinDistance != 0 {
			if i, j, ok := FindCloseEncounter(s.Particles(), opts.MinDistance); ok {
				s.encI, s.encJ = i, j
				status = StatusCloseEncounter
			}
		}
	}

	s.integ.Synchronize(sys)
	s.dt = dtLastDone
	s.flags = saved
	s.timing = time.Since(start)

	s.log.Debug("integrate finished",
		"t", s.t,
		"tmax", tmax,
		"steps", steps,
		"status", status,
		"elapsed", s.timing,
	)
	return status, nil
}

func (s *Simulation) checkTimestep(tmax float64) error {
	if math.IsNaN(tmax) {
		return fmt.Errorf("%w: tmax is NaN", ErrInvalidTimestep)
	}
	if s.dt == 0 || math.IsNaN(s.dt) || math.IsInf(s.dt, 0) {
		return fmt.Errorf("%w: dt = %v", ErrInvalidTimestep, s.dt)
	}
	if s.t < tmax && s.dt < 0 {
		return fmt.Errorf("%w: dt = %v does not advance t = %v toward tmax = %v",
			ErrInvalidTimestep, s.dt, s.t, tmax)
	}
	return nil
}
