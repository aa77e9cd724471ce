package sim

import "errors"

var (
	// ErrNoParticles is reported when a step is requested on an empty store.
	ErrNoParticles = errors.New("sim: no particles")

	// ErrEscape is reported when a particle leaves the maximum radius.
	ErrEscape = errors.New("sim: particle escaped beyond maximum radius")

	// ErrCloseEncounter is reported when two particles come closer than the
	// minimum distance.
	ErrCloseEncounter = errors.New("sim: close encounter below minimum distance")

	// ErrInvalidTimestep indicates a timestep that is zero, not finite, or
	// does not move time toward tmax.
	ErrInvalidTimestep = errors.New("sim: invalid timestep")
)
