package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LinearHead is a linear projection over a fixed label set, followed
// by softmax
type LinearHead struct {
	InputSize int
	Labels    []string

	Weights [][]float64 // [class][input]
	Biases  []float64
}

// NewLinearHead creates a classification head with weights drawn from
// the given initializer
func NewLinearHead(inputSize int, labels []string, init Initializer) *LinearHead {
	numClasses := len(labels)

	return &LinearHead{
		InputSize: inputSize,
		Labels:    labels,
		Weights:   init.Matrix(numClasses, inputSize),
		Biases:    init.Vector(numClasses),
	}
}

// Forward returns the post-softmax probability vector over the label set
func (h *LinearHead) Forward(input []float64) ([]float64, error) {
	if len(input) != h.InputSize {
		return nil, fmt.Errorf("%w: head expects %d inputs, got %d", ErrShapeMismatch, h.InputSize, len(input))
	}

	logits := make([]float64, len(h.Labels))
	for c := range logits {
		sum := h.Biases[c]
		for j, x := range input {
			sum += h.Weights[c][j] * x
		}
		logits[c] = sum
	}

	return Softmax(logits), nil
}

// Softmax converts logits into a probability distribution using the
// numerically stable max-subtraction form
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return []float64{}
	}

	maxLogit := floats.Max(logits)

	probs := make([]float64, len(logits))
	sum := 0.0
	for i, logit := range logits {
		probs[i] = math.Exp(logit - maxLogit)
		sum += probs[i]
	}

	for i := range probs {
		probs[i] /= sum
	}

	return probs
}

// ArgMax returns the index of the largest probability
func ArgMax(probs []float64) int {
	if len(probs) == 0 {
		return -1
	}
	return floats.MaxIdx(probs)
}
