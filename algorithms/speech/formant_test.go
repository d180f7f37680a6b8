package speech

import (
	"math"
	"math/rand"
	"testing"
)

// makeVowel synthesizes a vowel-like signal: three resonant partials
// over a low noise floor
func makeVowel(sampleRate, n int) []float64 {
	rng := rand.New(rand.NewSource(7))
	signal := make([]float64, n)
	for i := range n {
		tSec := float64(i) / float64(sampleRate)
		signal[i] = math.Sin(2.0*math.Pi*700.0*tSec) +
			0.7*math.Sin(2.0*math.Pi*1200.0*tSec) +
			0.4*math.Sin(2.0*math.Pi*2600.0*tSec) +
			0.01*(rng.Float64()*2.0-1.0)
	}
	return signal
}

func TestFormantAnalyzerFindsResonances(t *testing.T) {
	f := NewFormantAnalyzer(16000)

	result, err := f.Analyze(makeVowel(16000, 4096))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.Formants) == 0 || len(result.Formants) > 4 {
		t.Fatalf("expected 1-4 formants, got %d", len(result.Formants))
	}

	for i := 1; i < len(result.Formants); i++ {
		if result.Formants[i].Frequency <= result.Formants[i-1].Frequency {
			t.Errorf("formants not in ascending frequency order: %+v", result.Formants)
		}
	}

	// The strongest resonance must sit on one of the synthesized
	// partials
	strongest := result.Formants[0]
	for _, formant := range result.Formants[1:] {
		if formant.Amplitude > strongest.Amplitude {
			strongest = formant
		}
	}

	targets := []float64{700.0, 1200.0, 2600.0}
	matched := false
	for _, target := range targets {
		if math.Abs(strongest.Frequency-target) <= 150.0 {
			matched = true
		}
	}
	if !matched {
		t.Errorf("strongest formant at %f Hz matches no synthesized partial", strongest.Frequency)
	}

	for _, formant := range result.Formants {
		if formant.Bandwidth < 50.0 || formant.Bandwidth > 500.0 {
			t.Errorf("bandwidth %f outside plausible range", formant.Bandwidth)
		}
	}
}

func TestSingersFormantRatio(t *testing.T) {
	f := NewFormantAnalyzer(16000)

	inBand, err := f.Analyze(makeSine(3000.0, 16000, 4096))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if inBand.SingersFormant < 0.5 {
		t.Errorf("3 kHz tone should dominate the singer's formant band, got %f", inBand.SingersFormant)
	}

	outOfBand, err := f.Analyze(makeSine(500.0, 16000, 4096))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if outOfBand.SingersFormant > 0.1 {
		t.Errorf("500 Hz tone should leave the singer's formant band empty, got %f", outOfBand.SingersFormant)
	}
}

func TestFormantAnalyzerShortChunk(t *testing.T) {
	f := NewFormantAnalyzer(16000)

	if _, err := f.Analyze(make([]float64, 512)); err == nil {
		t.Error("expected error for chunk shorter than the analysis window")
	}
}

func TestVoiceQualityResultCarriesFormants(t *testing.T) {
	v := NewVoiceQualityAnalyzer(16000)

	result, err := v.Analyze(makeVowel(16000, 4096), constantTrack(220.0, 15), constantTrack(64.0, 15))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Formants == nil {
		t.Fatal("expected formant data on a full-length chunk")
	}
	if result.Formants.SingersFormant < 0 || result.Formants.SingersFormant > 1 {
		t.Errorf("singer's formant ratio %f outside [0, 1]", result.Formants.SingersFormant)
	}

	// Short chunks skip formant analysis without failing the rest
	short, err := v.Analyze(make([]float64, 64), nil, nil)
	if err != nil {
		t.Fatalf("Analyze failed on short chunk: %v", err)
	}
	if short.Formants != nil {
		t.Errorf("expected no formant data for a short chunk, got %+v", short.Formants)
	}
}
