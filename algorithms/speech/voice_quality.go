package speech

import (
	"fmt"
	"math"

	"github.com/Thetason/obiwan-emotion/algorithms/spectral"
	"gonum.org/v1/gonum/stat"
)

const (
	// NumFeatures is the number of voice-quality features contributed
	// to the assembled feature vector: jitter, shimmer, HNR,
	// breathiness, strain
	NumFeatures = 5

	// Number of harmonics summed for the HNR estimate
	numHarmonics = 5

	// HNR saturates here when no noise energy remains
	hnrCap = 100.0
)

// VoiceQualityAnalyzer measures vocal stability and noise
// characteristics. Jitter and shimmer come from the frame-level F0 and
// energy tracks; HNR and breathiness from the chunk's spectrum.
// WHY: cycle-to-cycle instability and spectral noise are the strongest
// acoustic correlates of vocal strain and emotional arousal.
type VoiceQualityAnalyzer struct {
	sampleRate int
	fft        *spectral.FFT
	formant    *FormantAnalyzer
}

// Result contains voice quality measurements for one chunk
type Result struct {
	Jitter      float64 `json:"jitter"`      // Relative F0 perturbation
	Shimmer     float64 `json:"shimmer"`     // Relative energy perturbation
	HNR         float64 `json:"hnr"`         // Harmonic-to-noise ratio (dB)
	Breathiness float64 `json:"breathiness"` // Upper-half spectral energy ratio
	Strain      float64 `json:"strain"`      // Composite strain score

	// Formants carries the vocal tract resonance analysis when the
	// chunk is long enough for it. Supplementary data: not part of
	// the feature vector.
	Formants *FormantResult `json:"formants,omitempty"`
}

// NewVoiceQualityAnalyzer creates a voice quality analyzer
func NewVoiceQualityAnalyzer(sampleRate int) *VoiceQualityAnalyzer {
	return &VoiceQualityAnalyzer{
		sampleRate: sampleRate,
		fft:        spectral.NewFFT(),
		formant:    NewFormantAnalyzer(sampleRate),
	}
}

// Analyze computes voice quality measures from a chunk and the F0 and
// energy tracks its prosody analysis produced
func (v *VoiceQualityAnalyzer) Analyze(chunk, f0Track, energyTrack []float64) (*Result, error) {
	if len(chunk) < 2 {
		return nil, fmt.Errorf("chunk too short for voice quality analysis: %d samples", len(chunk))
	}

	spectrum := v.fft.MagnitudeSpectrum(chunk)

	jitter := relativePerturbation(f0Track)
	shimmer := relativePerturbation(energyTrack)
	hnr := v.computeHNR(spectrum, meanPositive(f0Track), len(chunk))
	breathiness := computeBreathiness(spectrum)

	strain := stat.Mean([]float64{
		10.0 * jitter,
		10.0 * shimmer,
		math.Max(0, 20.0-hnr) / 20.0,
	}, nil)

	// Formant analysis needs a full window; skip it on shorter chunks
	// rather than failing the whole measurement
	formants, err := v.formant.Analyze(chunk)
	if err != nil {
		formants = nil
	}

	return &Result{
		Jitter:      jitter,
		Shimmer:     shimmer,
		HNR:         hnr,
		Breathiness: breathiness,
		Strain:      strain,
		Formants:    formants,
	}, nil
}

// FeatureVector returns the voice-quality slice of the assembled
// feature vector, in fixed order
func (r *Result) FeatureVector() []float64 {
	return []float64{
		r.Jitter,
		r.Shimmer,
		r.HNR,
		r.Breathiness,
		r.Strain,
	}
}

// relativePerturbation is the mean of |delta|/previous over consecutive
// positive pairs. Covers both jitter (F0 track) and shimmer (energy
// track).
func relativePerturbation(track []float64) float64 {
	sum := 0.0
	count := 0

	for i := 1; i < len(track); i++ {
		if track[i-1] <= 0 || track[i] <= 0 {
			continue
		}
		sum += math.Abs(track[i]-track[i-1]) / track[i-1]
		count++
	}

	if count == 0 {
		return 0
	}

	return sum / float64(count)
}

// computeHNR sums spectral energy at integer multiples of the detected
// F0 against the remaining energy, in dB. Saturates at hnrCap when no
// noise energy remains.
func (v *VoiceQualityAnalyzer) computeHNR(spectrum []float64, f0 float64, chunkSize int) float64 {
	if f0 <= 0 || len(spectrum) == 0 {
		return 0
	}

	binWidth := float64(v.sampleRate) / float64(chunkSize)

	harmonicEnergy := 0.0
	harmonicBins := make(map[int]bool)
	for h := 1; h <= numHarmonics; h++ {
		bin := int(math.Round(float64(h) * f0 / binWidth))
		if bin <= 0 || bin >= len(spectrum) {
			continue
		}
		if !harmonicBins[bin] {
			harmonicBins[bin] = true
			harmonicEnergy += spectrum[bin] * spectrum[bin]
		}
	}

	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}

	noiseEnergy := totalEnergy - harmonicEnergy
	if noiseEnergy <= 0 {
		return hnrCap
	}
	if harmonicEnergy <= 0 {
		return 0
	}

	hnr := 20.0 * math.Log10(harmonicEnergy/noiseEnergy)
	if hnr > hnrCap {
		return hnrCap
	}

	return hnr
}

// computeBreathiness is the ratio of energy in the upper half of the
// spectrum to total energy
func computeBreathiness(spectrum []float64) float64 {
	total := 0.0
	upper := 0.0

	for i, mag := range spectrum {
		energy := mag * mag
		total += energy
		if i >= len(spectrum)/2 {
			upper += energy
		}
	}

	if total == 0 {
		return 0
	}

	return upper / total
}

// meanPositive returns the mean of the positive entries, or 0
func meanPositive(track []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range track {
		if v > 0 {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
