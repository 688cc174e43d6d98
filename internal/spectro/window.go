package spectro

import "math"

// applyHann applies a Hann window in place to samples, promoted to double
// precision as the FFT input. Uses the symmetric Hann form (denominator
// n-1) over the fixed window size fftResolution.
func applyHann(samples []float64) {
	n := len(samples)
	if n <= 1 {
		return
	}
	denom := float64(n - 1)
	for i := range samples {
		w := 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/denom))
		samples[i] *= w
	}
}
