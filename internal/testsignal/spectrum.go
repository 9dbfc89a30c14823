// spectrum.go provides FFT-based helpers for asserting on signal content.

package testsignal

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns the magnitude spectrum of samples over the
// positive-frequency bins.
func PowerSpectrum(samples []float32) []float64 {
	in := make([]float64, len(samples))
	for i, v := range samples {
		in[i] = float64(v)
	}
	fft := fourier.NewFFT(len(in))
	coeffs := fft.Coefficients(nil, in)

	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = cmplx.Abs(c)
	}
	return out
}

// DominantFrequency returns the frequency (Hz) of the strongest
// positive-frequency bin, excluding DC.
func DominantFrequency(samples []float32, sampleRate int) float64 {
	spec := PowerSpectrum(samples)
	best, bestMag := 1, 0.0
	for i := 1; i < len(spec); i++ {
		if spec[i] > bestMag {
			bestMag = spec[i]
			best = i
		}
	}
	return float64(best) * float64(sampleRate) / float64(len(samples))
}
