package speech

import (
	"fmt"
	"math"
	"sort"

	"github.com/Thetason/obiwan-emotion/algorithms/spectral"
)

const (
	// Formant search range. Resonances below this are F0 territory,
	// not vocal tract shape.
	formantMinFreq = 90.0

	// F1 through F4 cover vowel identity and voice color
	maxFormants = 4

	// Adjacent envelope peaks closer than this merge into one formant
	formantMinSpacing = 200.0

	// Pre-emphasis flattens the spectral tilt so higher formants
	// survive peak picking
	preEmphasisCoeff = 0.97

	// Resolution of the LPC envelope scan
	envelopeFFTSize = 1024

	// Envelope peaks below this fraction of the maximum are noise
	minPeakRatio = 0.1

	// The singer's formant band. Energy clustering here is the
	// hallmark of trained operatic resonance.
	singersFormantLow  = 2800.0
	singersFormantHigh = 3200.0
)

// FormantAnalyzer extracts vocal tract resonances from a chunk. F1 and
// F2 carry vowel identity and mouth openness; the singer's formant
// band measures projected, trained resonance.
type FormantAnalyzer struct {
	sampleRate int
	windowSize int
	lpc        *LPCAnalyzer
	window     *spectral.HannWindow
	fft        *spectral.FFT
}

// Formant is a single detected resonance
type Formant struct {
	Frequency float64 `json:"frequency"` // Hz
	Bandwidth float64 `json:"bandwidth"` // Half-height width (Hz)
	Amplitude float64 `json:"amplitude"` // Envelope height (relative)
}

// FormantResult contains the resonances found in one chunk, ordered by
// frequency: Formants[0] is F1 when present
type FormantResult struct {
	Formants       []Formant `json:"formants"`
	SingersFormant float64   `json:"singers_formant"` // 2800-3200 Hz energy ratio
}

// NewFormantAnalyzer creates a formant analyzer for the given rate
func NewFormantAnalyzer(sampleRate int) *FormantAnalyzer {
	windowSize := 1024
	if sampleRate >= 16000 {
		windowSize = 2048
	}

	return &FormantAnalyzer{
		sampleRate: sampleRate,
		windowSize: windowSize,
		lpc:        NewLPCAnalyzer(sampleRate, 0),
		window:     spectral.NewHannWindow(windowSize),
		fft:        spectral.NewFFT(),
	}
}

// Analyze extracts formants from the start of the chunk and the
// singer's formant ratio from the whole chunk
func (f *FormantAnalyzer) Analyze(chunk []float64) (*FormantResult, error) {
	if len(chunk) < f.windowSize {
		return nil, fmt.Errorf("chunk too short for formant analysis: %d < %d samples", len(chunk), f.windowSize)
	}

	frame := f.preprocess(chunk[:f.windowSize])

	lpcResult, err := f.lpc.Analyze(frame)
	if err != nil {
		return nil, fmt.Errorf("vocal tract model fit failed: %w", err)
	}

	envelope := f.lpc.SpectralEnvelope(lpcResult.Coefficients, envelopeFFTSize)
	formants := f.pickFormants(envelope)

	return &FormantResult{
		Formants:       formants,
		SingersFormant: f.singersFormantRatio(chunk),
	}, nil
}

// preprocess applies pre-emphasis then a Hann window
func (f *FormantAnalyzer) preprocess(frame []float64) []float64 {
	emphasized := make([]float64, len(frame))
	emphasized[0] = frame[0]
	for i := 1; i < len(frame); i++ {
		emphasized[i] = frame[i] - preEmphasisCoeff*frame[i-1]
	}
	return f.window.Apply(emphasized)
}

// pickFormants finds significant envelope peaks, converts them to Hz,
// and merges peaks closer than formantMinSpacing keeping the stronger
func (f *FormantAnalyzer) pickFormants(envelope []float64) []Formant {
	maxVal := 0.0
	for _, v := range envelope {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return nil
	}

	var formants []Formant
	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] <= envelope[i-1] || envelope[i] <= envelope[i+1] {
			continue
		}
		if envelope[i]/maxVal < minPeakRatio {
			continue
		}

		freq := f.lpc.BinFrequency(i, envelopeFFTSize)
		if freq < formantMinFreq || freq > float64(f.sampleRate)/2.0 {
			continue
		}

		formants = append(formants, Formant{
			Frequency: freq,
			Bandwidth: f.peakBandwidth(envelope, i),
			Amplitude: envelope[i] / maxVal,
		})
	}

	sort.Slice(formants, func(i, j int) bool {
		return formants[i].Frequency < formants[j].Frequency
	})

	formants = mergeClosePeaks(formants)

	if len(formants) > maxFormants {
		formants = formants[:maxFormants]
	}

	return formants
}

// peakBandwidth measures the half-height width around an envelope
// peak, clamped to a plausible formant range
func (f *FormantAnalyzer) peakBandwidth(envelope []float64, peak int) float64 {
	half := envelope[peak] / 2.0

	left := 0
	for i := peak - 1; i >= 0; i-- {
		if envelope[i] <= half {
			left = i
			break
		}
	}

	right := len(envelope) - 1
	for i := peak + 1; i < len(envelope); i++ {
		if envelope[i] <= half {
			right = i
			break
		}
	}

	bw := f.lpc.BinFrequency(right-left, envelopeFFTSize)
	return math.Min(math.Max(bw, 50.0), 500.0)
}

// mergeClosePeaks collapses frequency-sorted peaks closer than
// formantMinSpacing, keeping the stronger of each pair
func mergeClosePeaks(formants []Formant) []Formant {
	if len(formants) <= 1 {
		return formants
	}

	merged := make([]Formant, 1, len(formants))
	merged[0] = formants[0]
	for _, candidate := range formants[1:] {
		last := &merged[len(merged)-1]
		if candidate.Frequency-last.Frequency >= formantMinSpacing {
			merged = append(merged, candidate)
		} else if candidate.Amplitude > last.Amplitude {
			*last = candidate
		}
	}

	return merged
}

// singersFormantRatio is the share of spectral energy inside the
// 2800-3200 Hz band
func (f *FormantAnalyzer) singersFormantRatio(chunk []float64) float64 {
	spectrum := f.fft.MagnitudeSpectrum(chunk)
	if len(spectrum) == 0 {
		return 0
	}

	binWidth := float64(f.sampleRate) / float64(len(chunk))

	total := 0.0
	band := 0.0
	for i, mag := range spectrum {
		energy := mag * mag
		total += energy

		freq := float64(i) * binWidth
		if freq >= singersFormantLow && freq <= singersFormantHigh {
			band += energy
		}
	}

	if total == 0 {
		return 0
	}

	return band / total
}
