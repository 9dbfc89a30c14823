// Package testsignal generates deterministic audio signals for tests and
// provides spectral helpers for checking reconstructions.
package testsignal

import (
	"math"
	"math/rand"

	"github.com/thesyncim/goencodec/tensor"
)

// Sine returns a (samples, channels) tensor holding a freq-Hz sine at the
// given amplitude, identical across channels.
func Sine(sampleRate int, freq, amplitude float64, samples, channels int) *tensor.Tensor {
	out := tensor.New(samples, channels)
	for t := 0; t < samples; t++ {
		v := float32(amplitude * math.Sin(2*math.Pi*freq*float64(t)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			out.Set2(t, c, v)
		}
	}
	return out
}

// Chirp returns a (samples, channels) linear sweep from f0 to f1 Hz.
func Chirp(sampleRate int, f0, f1 float64, samples, channels int) *tensor.Tensor {
	out := tensor.New(samples, channels)
	dur := float64(samples) / float64(sampleRate)
	k := (f1 - f0) / dur
	for t := 0; t < samples; t++ {
		tt := float64(t) / float64(sampleRate)
		v := float32(0.5 * math.Sin(2*math.Pi*(f0*tt+k*tt*tt/2)))
		for c := 0; c < channels; c++ {
			out.Set2(t, c, v)
		}
	}
	return out
}

// Noise returns a (samples, channels) tensor of seeded uniform noise in
// [-amplitude, amplitude].
func Noise(seed int64, amplitude float64, samples, channels int) *tensor.Tensor {
	rng := rand.New(rand.NewSource(seed))
	out := tensor.New(samples, channels)
	for i := range out.Data {
		out.Data[i] = float32(amplitude * (2*rng.Float64() - 1))
	}
	return out
}
