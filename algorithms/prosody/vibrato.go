package prosody

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Vibrato detection bounds for singing voice. Healthy vibrato sits
// around 4.5-7.5 Hz with an extent of roughly a quarter to a full
// semitone.
const (
	vibratoMinRate   = 3.0
	vibratoMaxRate   = 9.0
	vibratoMinExtent = 0.1
)

// VibratoResult describes pitch oscillation measured on the F0 track
type VibratoResult struct {
	Detected   bool    `json:"detected"`
	Rate       float64 `json:"rate"`       // Oscillation rate (Hz)
	Extent     float64 `json:"extent"`     // Peak deviation (semitones)
	Regularity float64 `json:"regularity"` // Oscillation evenness in (0, 1]
}

// analyzeVibrato measures pitch oscillation on the voiced portion of an
// F0 track sampled at frameRate frames per second
func analyzeVibrato(f0Track []float64, frameRate float64) *VibratoResult {
	result := &VibratoResult{}

	voiced := make([]float64, 0, len(f0Track))
	voicedIdx := make([]int, 0, len(f0Track))
	for i, f0 := range f0Track {
		if f0 > 0 {
			voiced = append(voiced, f0)
			voicedIdx = append(voicedIdx, i)
		}
	}

	// Too short to observe even one oscillation cycle
	if len(voiced) < 4 || frameRate <= 0 {
		return result
	}

	mean := stat.Mean(voiced, nil)
	if mean <= 0 {
		return result
	}

	// Deviation from the mean in semitones
	deviation := make([]float64, len(voiced))
	for i, f0 := range voiced {
		deviation[i] = 12.0 * math.Log2(f0/mean)
	}

	// Oscillation rate from mean crossings: one full cycle spans two
	// crossings
	crossings := 0
	var crossingFrames []int
	for i := 1; i < len(deviation); i++ {
		if (deviation[i-1] < 0 && deviation[i] >= 0) || (deviation[i-1] > 0 && deviation[i] <= 0) {
			crossings++
			crossingFrames = append(crossingFrames, i)
		}
	}

	// Duration spans the original frame positions of the voiced
	// samples, so unvoiced gaps inside the track do not compress time
	// and inflate the rate
	span := voicedIdx[len(voicedIdx)-1] - voicedIdx[0] + 1
	durationSec := float64(span) / frameRate
	if durationSec <= 0 || crossings == 0 {
		return result
	}

	result.Rate = float64(crossings) / (2.0 * durationSec)

	maxDev := 0.0
	for _, d := range deviation {
		if math.Abs(d) > maxDev {
			maxDev = math.Abs(d)
		}
	}
	result.Extent = maxDev

	if len(crossingFrames) > 2 {
		intervals := make([]float64, len(crossingFrames)-1)
		for i := 1; i < len(crossingFrames); i++ {
			intervals[i-1] = float64(crossingFrames[i] - crossingFrames[i-1])
		}
		result.Regularity = 1.0 / (1.0 + stat.Variance(intervals, nil))
	}

	result.Detected = result.Rate >= vibratoMinRate &&
		result.Rate <= vibratoMaxRate &&
		result.Extent >= vibratoMinExtent

	return result
}
