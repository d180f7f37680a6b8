package spectral

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT computes discrete Fourier magnitude spectra for analysis windows.
// Power-of-two sizes take the Cooley-Tukey path via go-dsp; any other
// size falls back to a direct DFT sum. Both paths agree on magnitudes
// within numerical tolerance, so callers never need to pad.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the complex spectrum of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	if isPowerOfTwo(len(x)) {
		return fft.FFTReal(x)
	}

	return directDFT(x)
}

// MagnitudeSpectrum returns the first N/2 magnitude bins of the spectrum
func (f *FFT) MagnitudeSpectrum(x []float64) []float64 {
	if len(x) < 2 {
		return []float64{}
	}

	spectrum := f.Compute(x)
	half := len(x) / 2

	magnitudes := make([]float64, half)
	for i := range half {
		magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	return magnitudes
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// directDFT computes the O(N^2) transform for sizes the radix-2 path
// cannot handle
func directDFT(x []float64) []complex128 {
	n := len(x)
	out := make([]complex128, n)

	for k := range n {
		var re, im float64
		for t := range n {
			angle := -2.0 * math.Pi * float64(k) * float64(t) / float64(n)
			re += x[t] * math.Cos(angle)
			im += x[t] * math.Sin(angle)
		}
		out[k] = complex(re, im)
	}

	return out
}
