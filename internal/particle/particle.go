package particle

// Particle is a point mass. A is recomputed by every force evaluation and is
// stale after any change to Pos or Vel.
type Particle struct {
	M   float64 `json:"m" yaml:"m"`
	Pos Vec3    `json:"pos" yaml:"pos"`
	Vel Vec3    `json:"vel" yaml:"vel"`
	A   Vec3    `json:"-" yaml:"-"`
}

// Store is an ordered, index-stable sequence of particles. It grows by
// appending during setup and may be cleared between independent runs.
type Store struct {
	ps []Particle
}

func (s *Store) Len() int { return len(s.ps) }

// Add appends p. Allocation failure is not recoverable and panics in the
// runtime.
func (s *Store) Add(p Particle) {
	s.ps = append(s.ps, p)
}

// ReplaceAll swaps the backing storage for a copy of ps. Slices returned by
// All before the call no longer alias the store.
func (s *Store) ReplaceAll(ps []Particle) {
	fresh := make([]Particle, len(ps))
	copy(fresh, ps)
	s.ps = fresh
}

// Get returns a copy of particle i.
func (s *Store) Get(i int) Particle {
	return s.ps[i]
}

// All returns the live backing slice. Writes through it mutate the store.
func (s *Store) All() []Particle {
	return s.ps
}

// Snapshot returns an independent copy of every particle.
func (s *Store) Snapshot() []Particle {
	c := make([]Particle, len(s.ps))
	copy(c, s.ps)
	return c
}

// Truncate drops every particle at index n and beyond.
func (s *Store) Truncate(n int) {
	if n < len(s.ps) {
		s.ps = s.ps[:n]
	}
}

// Clear releases the storage.
func (s *Store) Clear() {
	s.ps = nil
}
