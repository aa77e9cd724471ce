// Package gravity evaluates softened Newtonian accelerations for a set of
// point masses, together with the linearised (variational) accelerations of
// shadow particles used by chaos indicators.
//
// Both passes are direct O(N²) sums. Each pair is evaluated once and the
// reaction is applied through Newton's third law:
//
//	gravity.Accelerations(real, nActive, G, softening)
//	gravity.Variational(real, shadows, nActive, G, softening)
//
// Only the first nActive particles act as sources; the rest are test
// particles that feel the field without perturbing it.
package gravity
