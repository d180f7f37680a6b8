package spectral

import (
	"math"
)

// HannWindow is a periodic Hann window applied to analysis frames
// before the transform
type HannWindow struct {
	size         int
	coefficients []float64
}

// NewHannWindow creates a Hann window of the given size
func NewHannWindow(size int) *HannWindow {
	h := &HannWindow{size: size}
	h.generate()
	return h
}

func (h *HannWindow) generate() {
	h.coefficients = make([]float64, h.size)

	for i := range h.size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(h.size)))
	}
}

// Apply applies the window to a signal (creates new array).
// Returns nil if the signal length does not match the window size.
func (h *HannWindow) Apply(signal []float64) []float64 {
	if len(signal) != h.size {
		return nil
	}

	windowed := make([]float64, h.size)
	for i := range h.size {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed
}

// Size returns the window size
func (h *HannWindow) Size() int {
	return h.size
}
