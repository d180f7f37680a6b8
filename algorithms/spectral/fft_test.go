package spectral

import (
	"math"
	"math/cmplx"
	"testing"
)

func makeSine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range n {
		signal[i] = math.Sin(2.0 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestFFTDirectDFTParity(t *testing.T) {
	signal := makeSine(440.0, 16000, 512)

	f := NewFFT()
	fast := f.Compute(signal)
	direct := directDFT(signal)

	if len(fast) != len(direct) {
		t.Fatalf("length mismatch: fft %d, dft %d", len(fast), len(direct))
	}

	for i := range len(signal) / 2 {
		diff := math.Abs(cmplx.Abs(fast[i]) - cmplx.Abs(direct[i]))
		if diff > 1e-6 {
			t.Fatalf("magnitude mismatch at bin %d: fft %f, dft %f", i, cmplx.Abs(fast[i]), cmplx.Abs(direct[i]))
		}
	}
}

func TestFFTNonPowerOfTwo(t *testing.T) {
	signal := makeSine(440.0, 16000, 500)

	f := NewFFT()
	mags := f.MagnitudeSpectrum(signal)

	if len(mags) != 250 {
		t.Fatalf("expected 250 bins, got %d", len(mags))
	}

	for i, m := range mags {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			t.Fatalf("non-finite magnitude at bin %d", i)
		}
	}
}

func TestFFTSinePeakBin(t *testing.T) {
	sampleRate := 16000
	n := 512
	freq := 1000.0

	f := NewFFT()
	mags := f.MagnitudeSpectrum(makeSine(freq, sampleRate, n))

	peak := 0
	for i, m := range mags {
		if m > mags[peak] {
			peak = i
		}
	}

	expected := int(math.Round(freq * float64(n) / float64(sampleRate)))
	if peak < expected-1 || peak > expected+1 {
		t.Errorf("peak bin %d, expected near %d", peak, expected)
	}
}

func TestFFTEmptyInput(t *testing.T) {
	f := NewFFT()

	if got := f.Compute(nil); len(got) != 0 {
		t.Errorf("expected empty spectrum for empty input, got %d bins", len(got))
	}
	if got := f.MagnitudeSpectrum(nil); len(got) != 0 {
		t.Errorf("expected empty magnitudes for empty input, got %d bins", len(got))
	}
}
