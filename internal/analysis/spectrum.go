package analysis

import (
	"math"
	"math/cmplx"
)

// fft is a radix-2 transform; len(data) must be a power of two.
func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return append([]complex128(nil), data...)
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	fe := fft(even)
	fo := fft(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * fo[k]
		out[k] = fe[k] + w
		out[k+n/2] = fe[k] - w
	}
	return out
}

// Spectrum returns the amplitude spectrum of a uniformly sampled series with
// spacing dt. The mean is removed and the series zero-padded to a power of
// two. freqs[k] is in cycles per unit time.
func Spectrum(samples []float64, dt float64) (freqs, power []float64) {
	if len(samples) < 2 || dt <= 0 {
		return nil, nil
	}

	n := 1
	for n < len(samples) {
		n <<= 1
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))

	data := make([]complex128, n)
	for i, v := range samples {
		data[i] = complex(v-mean, 0)
	}

	out := fft(data)
	freqs = make([]float64, n/2)
	power = make([]float64, n/2)
	for k := range power {
		freqs[k] = float64(k) / (float64(n) * dt)
		power[k] = cmplx.Abs(out[k])
	}
	return freqs, power
}

// DominantPeriod returns the period of the strongest non-zero frequency, or 0
// when the series carries no signal.
func DominantPeriod(samples []float64, dt float64) float64 {
	freqs, power := Spectrum(samples, dt)
	best := 0
	for k := 1; k < len(power); k++ {
		if power[k] > power[best] || best == 0 {
			best = k
		}
	}
	if best == 0 || power[best] == 0 {
		return 0
	}
	return 1 / freqs[best]
}
