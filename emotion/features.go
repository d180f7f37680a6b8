package emotion

import (
	"errors"
	"fmt"
	"math"

	"github.com/Thetason/obiwan-emotion/algorithms/prosody"
	"github.com/Thetason/obiwan-emotion/algorithms/spectral"
	"github.com/Thetason/obiwan-emotion/algorithms/speech"
)

// ErrFeatureExtraction reports degenerate input: too-short chunks,
// near-silent audio, or non-finite samples
var ErrFeatureExtraction = errors.New("feature extraction failure")

// FeatureVectorLength is the invariant length of the assembled vector:
// MFCC(13) + spectral stats(3) + chroma(12) + prosody(7) + voice
// quality(5)
const FeatureVectorLength = spectral.NumMFCC + spectral.NumStats + spectral.NumChroma +
	prosody.NumFeatures + speech.NumFeatures

// Near-silent chunks are rejected before analysis
const silenceEnergyFloor = 1e-9

// FeatureAssembler runs the three analyzers over a chunk and
// concatenates their outputs into one fixed-length feature vector
type FeatureAssembler struct {
	spectral *spectral.Analyzer
	prosody  *prosody.Analyzer
	voice    *speech.VoiceQualityAnalyzer
}

// Features bundles the assembled vector with the per-analyzer results
type Features struct {
	Vector   []float64               `json:"vector"`
	Spectral *spectral.ChunkFeatures `json:"spectral"`
	Prosody  *prosody.Result         `json:"prosody"`
	Voice    *speech.Result          `json:"voice"`
}

// NewFeatureAssembler creates an assembler for the given analysis
// geometry
func NewFeatureAssembler(sampleRate, windowSize, hopSize int) *FeatureAssembler {
	return &FeatureAssembler{
		spectral: spectral.NewAnalyzer(sampleRate, windowSize, hopSize),
		prosody:  prosody.NewAnalyzer(sampleRate, windowSize, hopSize),
		voice:    speech.NewVoiceQualityAnalyzer(sampleRate),
	}
}

// Assemble extracts all features from a chunk. The returned vector
// always has FeatureVectorLength entries and contains no NaN/Inf.
func (fa *FeatureAssembler) Assemble(chunk []float64) (*Features, error) {
	if err := validateChunk(chunk); err != nil {
		return nil, err
	}

	spectralFeatures, err := fa.spectral.AnalyzeChunk(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureExtraction, err)
	}

	prosodyResult, err := fa.prosody.Analyze(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureExtraction, err)
	}

	voiceResult, err := fa.voice.Analyze(chunk, prosodyResult.F0Track, prosodyResult.EnergyTrack)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeatureExtraction, err)
	}

	vector := make([]float64, 0, FeatureVectorLength)
	vector = append(vector, spectralFeatures.MFCC...)
	vector = append(vector, spectralFeatures.Centroid, spectralFeatures.Rolloff, spectralFeatures.Flux)
	vector = append(vector, spectralFeatures.Chroma...)
	vector = append(vector, prosodyResult.FeatureVector()...)
	vector = append(vector, voiceResult.FeatureVector()...)

	if len(vector) != FeatureVectorLength {
		return nil, fmt.Errorf("%w: assembled %d features, expected %d", ErrFeatureExtraction, len(vector), FeatureVectorLength)
	}

	for i, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value at feature %d", ErrFeatureExtraction, i)
		}
	}

	return &Features{
		Vector:   vector,
		Spectral: spectralFeatures,
		Prosody:  prosodyResult,
		Voice:    voiceResult,
	}, nil
}

// Reset clears inter-chunk analyzer state (the flux spectrum)
func (fa *FeatureAssembler) Reset() {
	fa.spectral.Reset()
}

func validateChunk(chunk []float64) error {
	if len(chunk) == 0 {
		return fmt.Errorf("%w: empty chunk", ErrFeatureExtraction)
	}

	energy := 0.0
	for i, s := range chunk {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrFeatureExtraction, i)
		}
		energy += s * s
	}

	if energy < silenceEnergyFloor {
		return fmt.Errorf("%w: near-silent chunk (energy %g)", ErrFeatureExtraction, energy)
	}

	return nil
}
