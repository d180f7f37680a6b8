package nn

import (
	"fmt"
	"math"
)

// RNNLayer is a tanh recurrent layer. Bidirectional layers run forward
// and backward passes independently and concatenate the two hidden
// vectors at each timestep.
type RNNLayer struct {
	InputSize     int
	HiddenSize    int
	Bidirectional bool

	// Forward direction parameters
	WIH [][]float64 // [hidden][input]
	WHH [][]float64 // [hidden][hidden]
	BIH []float64
	BHH []float64

	// Backward direction parameters, nil for unidirectional layers
	WIHBack [][]float64
	WHHBack [][]float64
	BIHBack []float64
	BHHBack []float64
}

// NewRNNLayer creates a recurrent layer with weights drawn from the
// given initializer
func NewRNNLayer(inputSize, hiddenSize int, bidirectional bool, init Initializer) *RNNLayer {
	layer := &RNNLayer{
		InputSize:     inputSize,
		HiddenSize:    hiddenSize,
		Bidirectional: bidirectional,
		WIH:           init.Matrix(hiddenSize, inputSize),
		WHH:           init.Matrix(hiddenSize, hiddenSize),
		BIH:           init.Vector(hiddenSize),
		BHH:           init.Vector(hiddenSize),
	}

	if bidirectional {
		layer.WIHBack = init.Matrix(hiddenSize, inputSize)
		layer.WHHBack = init.Matrix(hiddenSize, hiddenSize)
		layer.BIHBack = init.Vector(hiddenSize)
		layer.BHHBack = init.Vector(hiddenSize)
	}

	return layer
}

// OutputSize returns the per-timestep output width
func (l *RNNLayer) OutputSize() int {
	if l.Bidirectional {
		return 2 * l.HiddenSize
	}
	return l.HiddenSize
}

// Forward runs the layer over a [timestep][feature] sequence and
// returns the per-timestep hidden states
func (l *RNNLayer) Forward(sequence [][]float64) ([][]float64, error) {
	if len(sequence) == 0 {
		return nil, fmt.Errorf("%w: empty sequence", ErrShapeMismatch)
	}

	for t, x := range sequence {
		if len(x) != l.InputSize {
			return nil, fmt.Errorf("%w: rnn timestep %d has %d features, expected %d", ErrShapeMismatch, t, len(x), l.InputSize)
		}
	}

	forward := l.runDirection(sequence, l.WIH, l.WHH, l.BIH, l.BHH, false)

	if !l.Bidirectional {
		return forward, nil
	}

	backward := l.runDirection(sequence, l.WIHBack, l.WHHBack, l.BIHBack, l.BHHBack, true)

	output := make([][]float64, len(sequence))
	for t := range sequence {
		output[t] = make([]float64, 2*l.HiddenSize)
		copy(output[t], forward[t])
		copy(output[t][l.HiddenSize:], backward[t])
	}

	return output, nil
}

// runDirection steps h_t = tanh(Wih*x_t + bih + Whh*h_{t-1} + bhh)
// through the sequence, h_0 = zero vector
func (l *RNNLayer) runDirection(sequence [][]float64, wih, whh [][]float64, bih, bhh []float64, reverse bool) [][]float64 {
	hidden := make([]float64, l.HiddenSize)
	states := make([][]float64, len(sequence))

	for step := range sequence {
		t := step
		if reverse {
			t = len(sequence) - 1 - step
		}

		next := make([]float64, l.HiddenSize)
		for h := range l.HiddenSize {
			sum := bih[h] + bhh[h]
			for j, x := range sequence[t] {
				sum += wih[h][j] * x
			}
			for j, prev := range hidden {
				sum += whh[h][j] * prev
			}
			next[h] = math.Tanh(sum)
		}

		hidden = next
		states[t] = next
	}

	return states
}

// RNNStack applies recurrent layers in sequence; the stack output is
// the final timestep's hidden vector of the last layer
type RNNStack struct {
	Layers []*RNNLayer
}

// NewRNNStack creates a stack from the given layers
func NewRNNStack(layers ...*RNNLayer) *RNNStack {
	return &RNNStack{Layers: layers}
}

// OutputSize returns the width of the stack's output vector
func (s *RNNStack) OutputSize() int {
	if len(s.Layers) == 0 {
		return 0
	}
	return s.Layers[len(s.Layers)-1].OutputSize()
}

// Forward runs the sequence through every layer and returns the final
// timestep's hidden vector
func (s *RNNStack) Forward(sequence [][]float64) ([]float64, error) {
	current := sequence

	for i, layer := range s.Layers {
		next, err := layer.Forward(current)
		if err != nil {
			return nil, fmt.Errorf("rnn layer %d: %w", i, err)
		}
		current = next
	}

	if len(current) == 0 {
		return nil, fmt.Errorf("%w: rnn stack produced empty sequence", ErrShapeMismatch)
	}

	return current[len(current)-1], nil
}
