package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// NumMFCC is the number of cepstral coefficients per frame
	NumMFCC = 13
	// NumChroma is the number of pitch classes in the chroma fold
	NumChroma = 12
	// NumStats is the number of scalar spectral statistics per frame
	// (centroid, rolloff, flux)
	NumStats = 3

	rolloffThreshold = 0.85
	referencePitch   = 440.0
)

// Analyzer extracts per-frame spectral features: MFCC, centroid,
// rolloff, flux, and chroma. Flux is computed against the previous
// frame's spectrum, carried across calls until Reset.
type Analyzer struct {
	sampleRate int
	windowSize int
	hopSize    int

	window *HannWindow
	fft    *FFT
	mel    *MelFilterBank

	prevSpectrum []float64
}

// FrameFeatures holds the spectral features of one analysis frame
type FrameFeatures struct {
	MFCC     []float64 `json:"mfcc"`     // Cepstral coefficients
	Centroid float64   `json:"centroid"` // Energy-weighted mean bin index
	Rolloff  float64   `json:"rolloff"`  // Bin index at 85% cumulative energy
	Flux     float64   `json:"flux"`     // Positive spectral change vs previous frame
	Chroma   []float64 `json:"chroma"`   // L1-normalized pitch class energies
}

// ChunkFeatures holds frame features mean-aggregated over a chunk
type ChunkFeatures struct {
	MFCC      []float64 `json:"mfcc"`
	Centroid  float64   `json:"centroid"`
	Rolloff   float64   `json:"rolloff"`
	Flux      float64   `json:"flux"`
	Chroma    []float64 `json:"chroma"`
	NumFrames int       `json:"num_frames"`
}

// NewAnalyzer creates a spectral analyzer for the given frame geometry
func NewAnalyzer(sampleRate, windowSize, hopSize int) *Analyzer {
	return &Analyzer{
		sampleRate: sampleRate,
		windowSize: windowSize,
		hopSize:    hopSize,
		window:     NewHannWindow(windowSize),
		fft:        NewFFT(),
		mel:        NewMelFilterBank(sampleRate, 26, NumMFCC),
	}
}

// AnalyzeFrame extracts features from a single analysis window
func (a *Analyzer) AnalyzeFrame(frame []float64) (*FrameFeatures, error) {
	if len(frame) != a.windowSize {
		return nil, fmt.Errorf("frame length %d does not match window size %d", len(frame), a.windowSize)
	}

	windowed := a.window.Apply(frame)
	spectrum := a.fft.MagnitudeSpectrum(windowed)

	mfcc, err := a.mel.MFCC(spectrum)
	if err != nil {
		return nil, fmt.Errorf("mfcc computation failed: %w", err)
	}

	features := &FrameFeatures{
		MFCC:     mfcc,
		Centroid: a.computeCentroid(spectrum),
		Rolloff:  a.computeRolloff(spectrum),
		Flux:     a.computeFlux(spectrum),
		Chroma:   a.computeChroma(spectrum),
	}

	a.prevSpectrum = spectrum

	return features, nil
}

// AnalyzeChunk slides the analysis window across the chunk and
// mean-aggregates the per-frame features
func (a *Analyzer) AnalyzeChunk(chunk []float64) (*ChunkFeatures, error) {
	if len(chunk) < a.windowSize {
		return nil, fmt.Errorf("chunk length %d shorter than window size %d", len(chunk), a.windowSize)
	}

	numFrames := (len(chunk)-a.windowSize)/a.hopSize + 1

	agg := &ChunkFeatures{
		MFCC:      make([]float64, NumMFCC),
		Chroma:    make([]float64, NumChroma),
		NumFrames: numFrames,
	}

	for t := range numFrames {
		start := t * a.hopSize
		frame, err := a.AnalyzeFrame(chunk[start : start+a.windowSize])
		if err != nil {
			return nil, err
		}

		floats.Add(agg.MFCC, frame.MFCC)
		floats.Add(agg.Chroma, frame.Chroma)
		agg.Centroid += frame.Centroid
		agg.Rolloff += frame.Rolloff
		agg.Flux += frame.Flux
	}

	inv := 1.0 / float64(numFrames)
	floats.Scale(inv, agg.MFCC)
	agg.Centroid *= inv
	agg.Rolloff *= inv
	agg.Flux *= inv

	// Re-normalize so the aggregated chroma stays a distribution
	if sum := floats.Sum(agg.Chroma); sum > 0 {
		floats.Scale(1.0/sum, agg.Chroma)
	}

	return agg, nil
}

// Reset clears the previous-frame spectrum used for flux
func (a *Analyzer) Reset() {
	a.prevSpectrum = nil
}

// computeCentroid returns the energy-weighted mean bin index
func (a *Analyzer) computeCentroid(spectrum []float64) float64 {
	numerator := 0.0
	denominator := 0.0

	for i, mag := range spectrum {
		energy := mag * mag
		numerator += float64(i) * energy
		denominator += energy
	}

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// computeRolloff returns the smallest bin index at which cumulative
// energy reaches 85% of the total
func (a *Analyzer) computeRolloff(spectrum []float64) float64 {
	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}

	if totalEnergy == 0 {
		return 0
	}

	targetEnergy := rolloffThreshold * totalEnergy
	cumulative := 0.0

	for i, mag := range spectrum {
		cumulative += mag * mag
		if cumulative >= targetEnergy {
			return float64(i)
		}
	}

	return float64(len(spectrum) - 1)
}

// computeFlux returns the positive-only bin-wise difference against the
// previous frame's spectrum; zero if there is no previous frame
func (a *Analyzer) computeFlux(spectrum []float64) float64 {
	if a.prevSpectrum == nil || len(a.prevSpectrum) != len(spectrum) {
		return 0
	}

	flux := 0.0
	for i, mag := range spectrum {
		diff := mag - a.prevSpectrum[i]
		if diff > 0 {
			flux += diff
		}
	}

	return flux
}

// computeChroma folds per-bin energy into pitch classes by semitone
// distance from A4 and L1-normalizes the result
func (a *Analyzer) computeChroma(spectrum []float64) []float64 {
	chroma := make([]float64, NumChroma)

	for i := 1; i < len(spectrum); i++ {
		freq := float64(i) * float64(a.sampleRate) / float64(len(spectrum)*2)
		if freq <= 0 {
			continue
		}

		semitone := int(math.Round(12.0 * math.Log2(freq/referencePitch)))
		pitchClass := ((semitone % NumChroma) + NumChroma) % NumChroma
		chroma[pitchClass] += spectrum[i] * spectrum[i]
	}

	if sum := floats.Sum(chroma); sum > 0 {
		floats.Scale(1.0/sum, chroma)
	}

	return chroma
}
