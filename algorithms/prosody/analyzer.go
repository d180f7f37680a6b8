package prosody

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

const (
	// NumFeatures is the number of prosodic features contributed to the
	// assembled feature vector: F0 mean/std/range, energy mean/std,
	// tempo, rhythm regularity
	NumFeatures = 7

	defaultMinF0 = 40.0
	defaultMaxF0 = 320.0

	// Minimum rise of the frame-to-frame energy derivative counted as
	// an accent event
	defaultPeakThreshold = 0.1
)

// Analyzer extracts prosodic features: an autocorrelation F0 track,
// the short-time energy envelope, and tempo/rhythm estimates derived
// from energy accents
type Analyzer struct {
	sampleRate int
	windowSize int
	hopSize    int

	minF0         float64
	maxF0         float64
	peakThreshold float64
}

// Result contains prosodic measurements for one chunk
type Result struct {
	F0Track     []float64 `json:"f0_track"`     // Per-frame F0 (Hz), 0 for unvoiced
	EnergyTrack []float64 `json:"energy_track"` // Per-frame sum of squared samples

	F0Mean  float64 `json:"f0_mean"`
	F0Std   float64 `json:"f0_std"`
	F0Range float64 `json:"f0_range"` // max - min over voiced frames

	EnergyMean float64 `json:"energy_mean"`
	EnergyStd  float64 `json:"energy_std"`

	Tempo            float64 `json:"tempo"`             // Accent events per minute
	RhythmRegularity float64 `json:"rhythm_regularity"` // 1/(1+Var(inter-peak intervals))

	Vibrato *VibratoResult `json:"vibrato,omitempty"`
}

// NewAnalyzer creates a prosody analyzer for the given frame geometry
func NewAnalyzer(sampleRate, windowSize, hopSize int) *Analyzer {
	return &Analyzer{
		sampleRate:    sampleRate,
		windowSize:    windowSize,
		hopSize:       hopSize,
		minF0:         defaultMinF0,
		maxF0:         defaultMaxF0,
		peakThreshold: defaultPeakThreshold,
	}
}

// Analyze extracts prosodic features from a chunk of samples
func (a *Analyzer) Analyze(chunk []float64) (*Result, error) {
	if len(chunk) < a.windowSize {
		return nil, fmt.Errorf("chunk length %d shorter than window size %d", len(chunk), a.windowSize)
	}

	numFrames := (len(chunk)-a.windowSize)/a.hopSize + 1

	f0Track := make([]float64, numFrames)
	energyTrack := make([]float64, numFrames)

	for t := range numFrames {
		start := t * a.hopSize
		frame := chunk[start : start+a.windowSize]

		f0Track[t] = a.estimateF0(frame)

		energy := 0.0
		for _, s := range frame {
			energy += s * s
		}
		energyTrack[t] = energy
	}

	result := &Result{
		F0Track:     f0Track,
		EnergyTrack: energyTrack,
	}

	a.aggregateF0(result)
	result.EnergyMean = stat.Mean(energyTrack, nil)
	result.EnergyStd = stdDev(energyTrack)

	peaks := a.findAccentPeaks(energyTrack)
	durationSec := float64(len(chunk)) / float64(a.sampleRate)
	if durationSec > 0 {
		result.Tempo = float64(len(peaks)) * 60.0 / durationSec
	}
	result.RhythmRegularity = rhythmRegularity(peaks)

	frameRate := float64(a.sampleRate) / float64(a.hopSize)
	result.Vibrato = analyzeVibrato(f0Track, frameRate)

	return result, nil
}

// FeatureVector returns the prosodic slice of the assembled feature
// vector, in fixed order
func (r *Result) FeatureVector() []float64 {
	return []float64{
		r.F0Mean,
		r.F0Std,
		r.F0Range,
		r.EnergyMean,
		r.EnergyStd,
		r.Tempo,
		r.RhythmRegularity,
	}
}

// estimateF0 searches autocorrelation lags corresponding to the
// configured F0 range and returns sampleRate/bestLag
func (a *Analyzer) estimateF0(frame []float64) float64 {
	minLag := int(float64(a.sampleRate) / a.maxF0)
	maxLag := int(float64(a.sampleRate) / a.minF0)

	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 {
		minLag = 1
	}
	if minLag > maxLag {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0

	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return 0
	}

	return float64(a.sampleRate) / float64(bestLag)
}

// aggregateF0 fills the F0 statistics over voiced frames
func (a *Analyzer) aggregateF0(result *Result) {
	voiced := make([]float64, 0, len(result.F0Track))
	for _, f0 := range result.F0Track {
		if f0 > 0 {
			voiced = append(voiced, f0)
		}
	}

	if len(voiced) == 0 {
		return
	}

	result.F0Mean = stat.Mean(voiced, nil)
	result.F0Std = stdDev(voiced)

	minF0, maxF0 := voiced[0], voiced[0]
	for _, f0 := range voiced[1:] {
		if f0 < minF0 {
			minF0 = f0
		}
		if f0 > maxF0 {
			maxF0 = f0
		}
	}
	result.F0Range = maxF0 - minF0
}

// findAccentPeaks returns the frame indices of local maxima in the
// frame-to-frame energy derivative exceeding the accent threshold
func (a *Analyzer) findAccentPeaks(energyTrack []float64) []int {
	if len(energyTrack) < 2 {
		return nil
	}

	derivative := make([]float64, len(energyTrack)-1)
	for i := 1; i < len(energyTrack); i++ {
		derivative[i-1] = energyTrack[i] - energyTrack[i-1]
	}

	var peaks []int
	for i := 1; i < len(derivative)-1; i++ {
		if derivative[i] > derivative[i-1] && derivative[i] >= derivative[i+1] && derivative[i] > a.peakThreshold {
			peaks = append(peaks, i)
		}
	}

	return peaks
}

// rhythmRegularity maps inter-peak interval variance to (0, 1]; fewer
// than two peaks yields 0
func rhythmRegularity(peaks []int) float64 {
	if len(peaks) < 2 {
		return 0
	}

	intervals := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals[i-1] = float64(peaks[i] - peaks[i-1])
	}

	variance := 0.0
	if len(intervals) > 1 {
		variance = stat.Variance(intervals, nil)
	}

	return 1.0 / (1.0 + variance)
}

func stdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}
