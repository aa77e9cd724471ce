package integrators

import "testing"

func benchmarkIntegrator(b *testing.B, in Integrator) {
	s := newTestSystem(twoPlanets(), 0.01)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		step(in, s)
	}
}

func BenchmarkLeapfrog(b *testing.B) { benchmarkIntegrator(b, NewLeapfrog()) }
func BenchmarkEuler(b *testing.B)    { benchmarkIntegrator(b, NewEuler()) }
func BenchmarkWHFast(b *testing.B)   { benchmarkIntegrator(b, NewWHFast()) }
func BenchmarkRK4(b *testing.B)      { benchmarkIntegrator(b, NewRK4()) }
func BenchmarkRK45(b *testing.B)     { benchmarkIntegrator(b, NewRK45()) }
