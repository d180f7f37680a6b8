package speech

import (
	"fmt"
	"math"
)

// LPCAnalyzer fits an all-pole model of the vocal tract to a signal
// frame via the autocorrelation method. The model's spectral envelope
// peaks at the vocal tract resonances, which is where formants live.
type LPCAnalyzer struct {
	sampleRate int
	order      int
}

// LPCResult contains the fitted model for one frame
type LPCResult struct {
	Coefficients   []float64 `json:"coefficients"`    // a0..ap with a0 = 1
	Gain           float64   `json:"gain"`            // Model gain
	ResidualEnergy float64   `json:"residual_energy"` // Final prediction error energy
	Order          int       `json:"order"`           // Model order used
}

// NewLPCAnalyzer creates an LPC analyzer. A non-positive order selects
// the speech rule of thumb, 12 + sampleRate/1000.
func NewLPCAnalyzer(sampleRate, order int) *LPCAnalyzer {
	if order <= 0 {
		order = 12 + sampleRate/1000
	}
	return &LPCAnalyzer{
		sampleRate: sampleRate,
		order:      order,
	}
}

// Analyze fits the all-pole model to the given frame
func (l *LPCAnalyzer) Analyze(signal []float64) (*LPCResult, error) {
	if len(signal) < l.order*2 {
		return nil, fmt.Errorf("signal too short for order-%d model: %d samples", l.order, len(signal))
	}

	r := autocorrelate(signal, l.order)
	if r[0] == 0 {
		return nil, fmt.Errorf("zero-energy signal")
	}

	coeffs, energy := levinsonDurbin(r)

	return &LPCResult{
		Coefficients:   coeffs,
		Gain:           math.Sqrt(energy),
		ResidualEnergy: energy,
		Order:          l.order,
	}, nil
}

// SpectralEnvelope evaluates the model's magnitude response
// 1/|A(e^jw)| on nfft/2+1 equally spaced frequency bins
func (l *LPCAnalyzer) SpectralEnvelope(coeffs []float64, nfft int) []float64 {
	envelope := make([]float64, nfft/2+1)

	for k := range envelope {
		omega := 2.0 * math.Pi * float64(k) / float64(nfft)

		re := 1.0
		im := 0.0
		for i := 1; i < len(coeffs); i++ {
			angle := -float64(i) * omega
			re -= coeffs[i] * math.Cos(angle)
			im -= coeffs[i] * math.Sin(angle)
		}

		mag := math.Hypot(re, im)
		if mag > 0 {
			envelope[k] = 1.0 / mag
		}
	}

	return envelope
}

// BinFrequency converts an envelope bin index back to Hz
func (l *LPCAnalyzer) BinFrequency(bin, nfft int) float64 {
	return float64(bin) * float64(l.sampleRate) / float64(nfft)
}

func autocorrelate(signal []float64, maxLag int) []float64 {
	r := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		for i := lag; i < len(signal); i++ {
			r[lag] += signal[i] * signal[i-lag]
		}
	}
	return r
}

// levinsonDurbin solves the normal equations for predictor
// coefficients. The returned coefficients predict
// x[n] as sum(a[k] * x[n-k], k=1..p).
func levinsonDurbin(r []float64) ([]float64, float64) {
	p := len(r) - 1
	a := make([]float64, p+1)
	a[0] = 1.0
	energy := r[0]

	for i := 1; i <= p; i++ {
		acc := r[i]
		for j := 1; j < i; j++ {
			acc -= a[j] * r[i-j]
		}

		k := acc / energy
		a[i] = k
		for j := 1; j <= i/2; j++ {
			tmp := a[j] - k*a[i-j]
			a[i-j] -= k * a[j]
			a[j] = tmp
		}

		energy *= 1.0 - k*k
		if energy <= 0 {
			break
		}
	}

	return a, energy
}
