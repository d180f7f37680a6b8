package emotion

import (
	"time"
)

// Label sets for the two classification heads. Order is the class
// order of the head outputs.
var (
	EmotionLabels = []string{"Happy", "Sad", "Angry", "Calm", "Passionate", "Tender", "Neutral"}
	StyleLabels   = []string{"Ballad", "Pop", "Rock", "Jazz", "Soul", "Classical"}
)

// Neutral labels used when a chunk cannot be classified
const (
	NeutralEmotion = "Neutral"
	NeutralStyle   = "Unknown"
)

// Prediction is one head's classification of a chunk
type Prediction struct {
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`    // Max post-softmax probability
	Probabilities []float64 `json:"probabilities"` // Sums to 1 within tolerance
}

// CombinedResult pairs the emotion and style predictions for one chunk.
// Downstream consumers treat it as opaque, immutable data.
type CombinedResult struct {
	Emotion    Prediction `json:"emotion"`
	Style      Prediction `json:"style"`
	Confidence float64    `json:"confidence"` // Average of the two head confidences
	Timestamp  time.Time  `json:"timestamp"`
}

// EmptyResult is the neutral result returned when classification is
// not possible: neutral labels, zero confidence
func EmptyResult() CombinedResult {
	return CombinedResult{
		Emotion:   Prediction{Label: NeutralEmotion},
		Style:     Prediction{Label: NeutralStyle},
		Timestamp: time.Now(),
	}
}

// IsEmpty reports whether the result carries no classification
func (r CombinedResult) IsEmpty() bool {
	return r.Confidence == 0 && len(r.Emotion.Probabilities) == 0
}

// predictionFromProbs derives label and confidence from a probability
// vector over the given label set
func predictionFromProbs(probs []float64, labels []string) Prediction {
	if len(probs) == 0 {
		return Prediction{}
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	label := ""
	if best < len(labels) {
		label = labels[best]
	}

	return Prediction{
		Label:         label,
		Confidence:    probs[best],
		Probabilities: probs,
	}
}
