package speech

import (
	"math"
	"testing"
)

func TestLevinsonDurbinFirstOrder(t *testing.T) {
	// AR(1) autocorrelation r = {1, 0.5} has the closed-form solution
	// a1 = 0.5 with error energy 1 - 0.5^2 = 0.75
	coeffs, energy := levinsonDurbin([]float64{1.0, 0.5})

	if len(coeffs) != 2 || coeffs[0] != 1.0 {
		t.Fatalf("unexpected coefficients: %v", coeffs)
	}
	if math.Abs(coeffs[1]-0.5) > 1e-12 {
		t.Errorf("expected a1 = 0.5, got %f", coeffs[1])
	}
	if math.Abs(energy-0.75) > 1e-12 {
		t.Errorf("expected error energy 0.75, got %f", energy)
	}
}

func TestLPCResidualSmallForSine(t *testing.T) {
	// A sinusoid is perfectly predictable from two past samples, so a
	// low-order model should absorb nearly all of its energy
	lpc := NewLPCAnalyzer(16000, 2)
	signal := makeSine(1000.0, 16000, 2048)

	result, err := lpc.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	signalEnergy := 0.0
	for _, s := range signal {
		signalEnergy += s * s
	}

	if result.ResidualEnergy >= 0.05*signalEnergy {
		t.Errorf("residual energy %f not small against signal energy %f",
			result.ResidualEnergy, signalEnergy)
	}
	if result.Gain <= 0 {
		t.Errorf("expected positive gain, got %f", result.Gain)
	}
}

func TestLPCEnvelopePeaksNearSineFrequency(t *testing.T) {
	lpc := NewLPCAnalyzer(16000, 2)
	signal := makeSine(1000.0, 16000, 2048)

	result, err := lpc.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	envelope := lpc.SpectralEnvelope(result.Coefficients, 1024)
	if len(envelope) != 513 {
		t.Fatalf("expected 513 envelope bins, got %d", len(envelope))
	}

	peakBin := 0
	for i, v := range envelope {
		if v > envelope[peakBin] {
			peakBin = i
		}
	}

	peakFreq := lpc.BinFrequency(peakBin, 1024)
	if math.Abs(peakFreq-1000.0) > 100.0 {
		t.Errorf("envelope peak at %f Hz, expected near 1000 Hz", peakFreq)
	}
}

func TestLPCDefaultOrder(t *testing.T) {
	if lpc := NewLPCAnalyzer(16000, 0); lpc.order != 28 {
		t.Errorf("expected default order 28 at 16 kHz, got %d", lpc.order)
	}
}

func TestLPCShortSignal(t *testing.T) {
	lpc := NewLPCAnalyzer(16000, 12)

	if _, err := lpc.Analyze(make([]float64, 10)); err == nil {
		t.Error("expected error for signal shorter than 2x order")
	}
}

func TestLPCZeroSignal(t *testing.T) {
	lpc := NewLPCAnalyzer(16000, 4)

	if _, err := lpc.Analyze(make([]float64, 64)); err == nil {
		t.Error("expected error for zero-energy signal")
	}
}
