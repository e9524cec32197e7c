package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PadPow2 removes the mean and zero-pads to the next power of two.
func PadPow2(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	n := 1
	for n < len(data) {
		n <<= 1
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns magnitudes for bins 0..n/2-1 of the padded signal.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(PadPow2(data))
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantFrequency returns the strongest non-DC frequency in Hz of a signal
// sampled every dt seconds.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt)
}
