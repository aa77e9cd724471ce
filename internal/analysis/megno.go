package analysis

// Megno accumulates the Mean Exponential Growth factor of Nearby Orbits from
// the tangent displacement of a trajectory. For quasi-periodic orbits the
// indicator tends to 2; chaotic orbits grow linearly in time, and the slope
// of the running mean against time estimates the Lyapunov exponent.
//
// The zero value is ready to use.
type Megno struct {
	ys  float64
	yss float64

	n     int
	meanT float64
	meanY float64
	covYT float64
	varT  float64
}

// Update folds one step into the running integrals. t is the simulation time
// at the force evaluation, dt the step length and ratio the value
// (δ·δ̇)/(δ·δ) of the tangent vector at that time.
func (m *Megno) Update(t, dt, ratio float64) {
	m.ys += 2 * dt * t * ratio
	y := 0.0
	if t != 0 {
		y = m.ys / t
	}
	m.yss += y * dt

	mean := m.value(t)
	m.n++
	w := float64(m.n-1) / float64(m.n)
	dT := t - m.meanT
	dY := mean - m.meanY
	m.covYT += w * dT * dY
	m.varT += w * dT * dT
	m.meanT += dT / float64(m.n)
	m.meanY += dY / float64(m.n)
}

// Value returns the time-averaged MEGNO at time t, or 0 at t == 0.
func (m *Megno) Value(t float64) float64 {
	return m.value(t)
}

func (m *Megno) value(t float64) float64 {
	if t == 0 {
		return 0
	}
	return m.yss / t
}

// Lyapunov returns the least-squares slope of the mean MEGNO against time.
// It is 0 until at least two distinct times have been recorded.
func (m *Megno) Lyapunov() float64 {
	if m.varT == 0 {
		return 0
	}
	return m.covYT / m.varT
}

// Samples is the number of updates since the last Reset.
func (m *Megno) Samples() int { return m.n }

func (m *Megno) Reset() {
	*m = Megno{}
}
