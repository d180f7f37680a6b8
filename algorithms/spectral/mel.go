package spectral

import (
	"fmt"
	"math"
)

// MelFilterBank computes mel-frequency cepstral coefficients from a
// magnitude spectrum: triangular mel filters -> log -> DCT-II
type MelFilterBank struct {
	numFilters      int
	numCoefficients int
	sampleRate      int

	filters     [][]float64
	dctMatrix   [][]float64
	specSize    int
	initialized bool
}

// NewMelFilterBank creates a mel filter bank with the given geometry
func NewMelFilterBank(sampleRate, numFilters, numCoefficients int) *MelFilterBank {
	if numFilters <= 0 {
		numFilters = 26
	}
	if numCoefficients <= 0 {
		numCoefficients = 13
	}

	return &MelFilterBank{
		numFilters:      numFilters,
		numCoefficients: numCoefficients,
		sampleRate:      sampleRate,
	}
}

// hzToMel converts frequency in Hz to mel scale
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz converts mel scale to frequency in Hz
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// initialize builds the triangular filters and DCT matrix for a
// magnitude spectrum of the given size (N/2 bins for an N-point frame)
func (mb *MelFilterBank) initialize(specSize int) error {
	if specSize <= 0 {
		return fmt.Errorf("invalid spectrum size: %d", specSize)
	}

	lowMel := hzToMel(0.0)
	highMel := hzToMel(float64(mb.sampleRate) / 2.0)

	// Equally spaced mel points, converted back to spectrum bins
	melPoints := make([]float64, mb.numFilters+2)
	melStep := (highMel - lowMel) / float64(mb.numFilters+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*melStep
	}

	fftSize := specSize * 2
	binPoints := make([]int, len(melPoints))
	for i, mel := range melPoints {
		hz := melToHz(mel)
		bin := int(math.Floor(float64(fftSize)*hz/float64(mb.sampleRate) + 0.5))
		if bin > specSize-1 {
			bin = specSize - 1
		}
		binPoints[i] = bin
	}

	mb.filters = make([][]float64, mb.numFilters)
	for m := range mb.numFilters {
		mb.filters[m] = make([]float64, specSize)

		leftBin := binPoints[m]
		centerBin := binPoints[m+1]
		rightBin := binPoints[m+2]

		// Rising edge
		for k := leftBin; k < centerBin && k < specSize; k++ {
			mb.filters[m][k] = float64(k-leftBin) / float64(centerBin-leftBin)
		}

		// Falling edge
		for k := centerBin; k < rightBin && k < specSize; k++ {
			mb.filters[m][k] = float64(rightBin-k) / float64(rightBin-centerBin)
		}
	}

	mb.createDCTMatrix()
	mb.specSize = specSize
	mb.initialized = true

	return nil
}

// createDCTMatrix builds the orthonormal DCT-II matrix
func (mb *MelFilterBank) createDCTMatrix() {
	mb.dctMatrix = make([][]float64, mb.numCoefficients)

	for k := range mb.numCoefficients {
		mb.dctMatrix[k] = make([]float64, mb.numFilters)

		for n := range mb.numFilters {
			mb.dctMatrix[k][n] = math.Cos(math.Pi * float64(k) * (float64(n) + 0.5) / float64(mb.numFilters))

			if k == 0 {
				mb.dctMatrix[k][n] *= math.Sqrt(1.0 / float64(mb.numFilters))
			} else {
				mb.dctMatrix[k][n] *= math.Sqrt(2.0 / float64(mb.numFilters))
			}
		}
	}
}

// MFCC computes cepstral coefficients from a magnitude spectrum
func (mb *MelFilterBank) MFCC(magnitudeSpectrum []float64) ([]float64, error) {
	if len(magnitudeSpectrum) == 0 {
		return nil, fmt.Errorf("empty magnitude spectrum")
	}

	if !mb.initialized || mb.specSize != len(magnitudeSpectrum) {
		if err := mb.initialize(len(magnitudeSpectrum)); err != nil {
			return nil, fmt.Errorf("failed to initialize mel filter bank: %w", err)
		}
	}

	// Power spectrum through the triangular filters
	melEnergies := make([]float64, mb.numFilters)
	for m := range mb.numFilters {
		sum := 0.0
		for k, mag := range magnitudeSpectrum {
			sum += mag * mag * mb.filters[m][k]
		}
		melEnergies[m] = sum
	}

	// Log with floor to avoid log(0)
	logMel := make([]float64, mb.numFilters)
	for i, mel := range melEnergies {
		if mel > 1e-10 {
			logMel[i] = math.Log(mel)
		} else {
			logMel[i] = math.Log(1e-10)
		}
	}

	// DCT
	coeffs := make([]float64, mb.numCoefficients)
	for k := range mb.numCoefficients {
		sum := 0.0
		for n := range mb.numFilters {
			sum += logMel[n] * mb.dctMatrix[k][n]
		}
		coeffs[k] = sum
	}

	return coeffs, nil
}

// NumCoefficients returns the number of cepstral coefficients produced
func (mb *MelFilterBank) NumCoefficients() int {
	return mb.numCoefficients
}

// Filters returns the triangular filters (for debugging/visualization)
func (mb *MelFilterBank) Filters() [][]float64 {
	return mb.filters
}
