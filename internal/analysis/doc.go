// Package analysis provides chaos indicators for n-body integrations.
//
//   - [Megno]: running MEGNO integrals and the Lyapunov slope estimate
//   - [TangentRatio]: the growth rate of a tangent vector held in shadow particles
//   - [Shadows]: random initial tangent displacements
//   - [Spectrum], [DominantPeriod]: frequency content of sampled coordinates
//
// # Chaos Detection
//
// A MEGNO value settling near 2 indicates a regular orbit; linear growth in
// time indicates chaos:
//
//	var m analysis.Megno
//	m.Update(t, dt, analysis.TangentRatio(shadows))
//	if m.Value(t) > 4 {
//	    // orbit is chaotic
//	}
package analysis
