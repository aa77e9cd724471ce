package sim

import (
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/nbody/internal/analysis"
	"github.com/san-kum/nbody/internal/gravity"
	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/particle"
)

const (
	DefaultDt = 0.01
	DefaultG  = 1.0
)

// Simulation is the complete state of one n-body integration. It is not safe
// for concurrent use; independent simulations may run in parallel.
type Simulation struct {
	store   particle.Store
	nActive int
	nVar    int

	t, tmax float64
	dt      float64
	g       float64
	eps     float64
	timing  time.Duration

	kind     integrators.Kind
	integ    integrators.Integrator
	flags    integrators.Flags
	modified bool

	forces    ForceFunc
	observers []Observer

	megno analysis.Megno
	rng   *rand.Rand

	encI, encJ int
	escaped    int

	log *slog.Logger
}

type Option func(*Simulation)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithSeed makes the random source deterministic until the next Reset.
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.rng = rand.New(rand.NewSource(seed)) }
}

func WithIntegrator(k integrators.Kind) Option {
	return func(s *Simulation) {
		if err := s.SetIntegrator(k); err != nil {
			s.log.Warn("keeping default integrator", "requested", k, "err", err)
		}
	}
}

func WithDt(dt float64) Option         { return func(s *Simulation) { s.dt = dt } }
func WithG(g float64) Option           { return func(s *Simulation) { s.g = g } }
func WithSoftening(eps float64) Option { return func(s *Simulation) { s.eps = eps } }
func WithForces(f ForceFunc) Option    { return func(s *Simulation) { s.forces = f } }
func WithObserver(o Observer) Option   { return func(s *Simulation) { s.observers = append(s.observers, o) } }
func WithActive(nActive int) Option    { return func(s *Simulation) { s.nActive = nActive } }

func New(opts ...Option) *Simulation {
	s := &Simulation{
		log:   slog.Default(),
		kind:  integrators.Leapfrog,
		integ: integrators.NewLeapfrog(),
	}
	s.Reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset restores every default: time, timestep, constants, flags and MEGNO
// state. The store is released, the integrator's caches are dropped and the
// random source is reseeded from the clock and process id. The selected
// integrator, force hook and observers are kept.
func (s *Simulation) Reset() {
	s.store.Clear()
	s.nActive = -1
	s.nVar = 0

	s.t = 0
	s.tmax = 0
	s.dt = DefaultDt
	s.g = DefaultG
	s.eps = 0
	s.timing = 0

	s.integ.Reset()
	s.flags = integrators.DefaultFlags()
	s.modified = true

	s.megno.Reset()
	s.encI, s.encJ = -1, -1
	s.escaped = -1

	s.rng = rand.New(rand.NewSource(time.Now().UnixNano() + int64(os.Getpid())))
}

// Add appends a real particle. Shadow particles always trail the real ones,
// so adding to a simulation with MEGNO enabled drops the shadows and
// disables MEGNO.
func (s *Simulation) Add(p particle.Particle) {
	s.dropShadows("add")
	s.store.Add(p)
	s.modified = true
}

// ReplaceAll replaces the real particles with a copy of ps. Shadows are kept
// when the real count is unchanged.
func (s *Simulation) ReplaceAll(ps []particle.Particle) {
	if s.nVar > 0 && len(ps) == s.N() {
		all := make([]particle.Particle, 0, len(ps)+s.nVar)
		all = append(all, ps...)
		all = append(all, s.Shadows()...)
		s.store.ReplaceAll(all)
	} else {
		s.dropShadows("replace")
		s.store.ReplaceAll(ps)
	}
	s.modified = true
}

func (s *Simulation) dropShadows(op string) {
	if s.nVar == 0 {
		return
	}
	s.log.Warn("particle store changed, disabling MEGNO", "op", op, "shadows", s.nVar)
	s.store.Truncate(s.N())
	s.nVar = 0
	s.megno.Reset()
}

// Particle returns a copy of real particle i.
func (s *Simulation) Particle(i int) particle.Particle {
	return s.store.Get(i)
}

// Particles returns the live slice of real particles. It is invalidated by
// Add, ReplaceAll, InitMegno and Reset.
func (s *Simulation) Particles() []particle.Particle {
	return s.store.All()[:s.N()]
}

// Shadows returns the live slice of shadow particles.
func (s *Simulation) Shadows() []particle.Particle {
	return s.store.All()[s.N():]
}

// N is the number of real particles.
func (s *Simulation) N() int { return s.store.Len() - s.nVar }

// NVar is the number of shadow particles.
func (s *Simulation) NVar() int { return s.nVar }

// NActive is the number of real particles acting as gravity sources.
func (s *Simulation) NActive() int { return gravity.ActiveCount(s.nActive, s.N()) }

// SetActive sets the number of source particles; a negative value makes
// every real particle active.
func (s *Simulation) SetActive(n int) {
	s.nActive = n
	s.modified = true
}

func (s *Simulation) Time() float64            { return s.t }
func (s *Simulation) SetTime(t float64)        { s.t = t }
func (s *Simulation) TMax() float64            { return s.tmax }
func (s *Simulation) Dt() float64              { return s.dt }
func (s *Simulation) SetDt(dt float64)         { s.dt = dt }
func (s *Simulation) G() float64               { return s.g }
func (s *Simulation) SetG(g float64)           { s.g = g }
func (s *Simulation) Softening() float64       { return s.eps }
func (s *Simulation) SetSoftening(eps float64) { s.eps = eps }

// Timing is the wall-clock duration of the last Step or Integrate call.
func (s *Simulation) Timing() time.Duration { return s.timing }

// CloseEncounter returns the pair found by the last close-encounter scan, or
// (-1, -1).
func (s *Simulation) CloseEncounter() (int, int) { return s.encI, s.encJ }

// Escape returns the index found by the last escape scan, or -1.
func (s *Simulation) Escape() int { return s.escaped }

func (s *Simulation) SetForces(f ForceFunc) { s.forces = f }
func (s *Simulation) ClearForces()          { s.forces = nil }
func (s *Simulation) HasForces() bool       { return s.forces != nil }

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Flags() integrators.Flags     { return s.flags }
func (s *Simulation) SetFlags(f integrators.Flags) { s.flags = f }
func (s *Simulation) Integrator() integrators.Kind { return s.kind }
func (s *Simulation) Rand() *rand.Rand             { return s.rng }
func (s *Simulation) Logger() *slog.Logger         { return s.log }

// Variant returns the active integrator for variant-specific tuning.
func (s *Simulation) Variant() integrators.Integrator { return s.integ }

// SetIntegrator switches the active variant. Pending cached state of the old
// variant is written back first.
func (s *Simulation) SetIntegrator(k integrators.Kind) error {
	in, err := integrators.New(k)
	if err != nil {
		return err
	}
	s.integ.Synchronize(s.system())
	s.kind = k
	s.integ = in
	s.modified = true
	return nil
}

// Synchronize writes any cached integrator state back to the store.
func (s *Simulation) Synchronize() {
	s.integ.Synchronize(s.system())
}

// Energy is the total energy of the real particles.
func (s *Simulation) Energy() float64 {
	return gravity.Energy(s.Particles(), s.nActive, s.g, s.eps)
}

// InitMegno appends one shadow particle per real particle with a random
// displacement of scale delta and restarts the MEGNO integrals. Calling it
// again replaces the existing shadows.
func (s *Simulation) InitMegno(delta float64) {
	s.store.Truncate(s.N())
	n := s.store.Len()
	for _, p := range analysis.Shadows(s.rng, s.store.All(), delta) {
		s.store.Add(p)
	}
	s.nVar = n
	s.megno.Reset()
	s.modified = true
}

// Megno returns the time-averaged MEGNO, or 0 when MEGNO is disabled or no
// time has elapsed.
func (s *Simulation) Megno() float64 {
	if s.nVar == 0 {
		return 0
	}
	return s.megno.Value(s.t)
}

// Lyapunov returns the Lyapunov exponent estimate from the MEGNO slope.
func (s *Simulation) Lyapunov() float64 {
	if s.nVar == 0 {
		return 0
	}
	return s.megno.Lyapunov()
}

// computeForces runs gravity, the variational pass and the force hook.
func (s *Simulation) computeForces() {
	ps := s.store.All()
	n := s.N()
	gravity.Accelerations(ps[:n], s.nActive, s.g, s.eps)
	if s.nVar > 0 {
		gravity.Variational(ps[:n], ps[n:], s.nActive, s.g, s.eps)
	}
	if s.forces != nil {
		s.forces(s)
	}
}
