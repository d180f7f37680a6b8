package prosody

import (
	"math"
	"testing"
)

func makeSine(freq float64, sampleRate, n int) []float64 {
	signal := make([]float64, n)
	for i := range n {
		signal[i] = 0.5 * math.Sin(2.0*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return signal
}

func TestF0EstimateSine220(t *testing.T) {
	a := NewAnalyzer(16000, 512, 256)

	result, err := a.Analyze(makeSine(220.0, 16000, 4096))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.F0Mean < 220.0*0.95 || result.F0Mean > 220.0*1.05 {
		t.Errorf("F0 mean %f outside 5%% of 220 Hz", result.F0Mean)
	}
}

func TestF0EstimateSine100(t *testing.T) {
	a := NewAnalyzer(16000, 512, 256)

	result, err := a.Analyze(makeSine(100.0, 16000, 4096))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.F0Mean < 100.0*0.95 || result.F0Mean > 100.0*1.05 {
		t.Errorf("F0 mean %f outside 5%% of 100 Hz", result.F0Mean)
	}
}

func TestSilenceProducesFiniteResult(t *testing.T) {
	a := NewAnalyzer(16000, 512, 256)

	result, err := a.Analyze(make([]float64, 4096))
	if err != nil {
		t.Fatalf("Analyze failed on silence: %v", err)
	}

	for _, v := range result.FeatureVector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite prosody feature on silence: %v", result.FeatureVector())
		}
	}

	if result.F0Mean != 0 {
		t.Errorf("expected zero F0 mean on silence, got %f", result.F0Mean)
	}
	if result.Tempo != 0 {
		t.Errorf("expected zero tempo on silence, got %f", result.Tempo)
	}
}

func TestFeatureVectorLength(t *testing.T) {
	a := NewAnalyzer(16000, 512, 256)

	result, err := a.Analyze(makeSine(220.0, 16000, 4096))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(result.FeatureVector()) != NumFeatures {
		t.Errorf("expected %d prosody features, got %d", NumFeatures, len(result.FeatureVector()))
	}
}

func TestRhythmRegularityFewPeaks(t *testing.T) {
	if got := rhythmRegularity(nil); got != 0 {
		t.Errorf("expected 0 regularity for no peaks, got %f", got)
	}
	if got := rhythmRegularity([]int{5}); got != 0 {
		t.Errorf("expected 0 regularity for one peak, got %f", got)
	}
}

func TestRhythmRegularityEvenSpacing(t *testing.T) {
	// Perfectly even spacing has zero interval variance
	if got := rhythmRegularity([]int{2, 6, 10, 14}); got != 1.0 {
		t.Errorf("expected regularity 1 for even spacing, got %f", got)
	}

	uneven := rhythmRegularity([]int{2, 3, 10, 14})
	if uneven >= 1.0 || uneven <= 0 {
		t.Errorf("expected uneven spacing regularity in (0,1), got %f", uneven)
	}
}

func TestAccentPeaksDetectEnergyBursts(t *testing.T) {
	a := NewAnalyzer(16000, 512, 256)

	// Alternating loud and quiet sections create energy derivative peaks
	chunk := make([]float64, 8192)
	for i := range chunk {
		amp := 0.05
		if (i/2048)%2 == 1 {
			amp = 0.8
		}
		chunk[i] = amp * math.Sin(2.0*math.Pi*220.0*float64(i)/16000.0)
	}

	result, err := a.Analyze(chunk)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Tempo <= 0 {
		t.Errorf("expected positive tempo for pulsed signal, got %f", result.Tempo)
	}
}

func TestChunkTooShort(t *testing.T) {
	a := NewAnalyzer(16000, 512, 256)

	if _, err := a.Analyze(make([]float64, 64)); err == nil {
		t.Error("expected error for chunk shorter than window")
	}
}
