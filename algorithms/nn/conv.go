package nn

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports an input whose dimensions do not match the
// layer configuration, e.g. from a misconfigured pipeline
var ErrShapeMismatch = errors.New("shape mismatch")

// ConvLayer is a 1-D convolution layer with ReLU activation. Weights
// are indexed [outChannel][inChannel][kernel] and immutable once
// constructed.
type ConvLayer struct {
	InChannels  int
	OutChannels int
	KernelSize  int
	Stride      int

	Weights [][][]float64
	Biases  []float64
}

// NewConvLayer creates a convolution layer with weights drawn from the
// given initializer
func NewConvLayer(inChannels, outChannels, kernelSize, stride int, init Initializer) *ConvLayer {
	if stride <= 0 {
		stride = 1
	}

	weights := make([][][]float64, outChannels)
	for c := range outChannels {
		weights[c] = init.Matrix(inChannels, kernelSize)
	}

	return &ConvLayer{
		InChannels:  inChannels,
		OutChannels: outChannels,
		KernelSize:  kernelSize,
		Stride:      stride,
		Weights:     weights,
		Biases:      init.Vector(outChannels),
	}
}

// Forward applies the valid convolution and ReLU. Input and output are
// indexed [channel][position].
func (l *ConvLayer) Forward(input [][]float64) ([][]float64, error) {
	if len(input) != l.InChannels {
		return nil, fmt.Errorf("%w: conv layer expects %d input channels, got %d", ErrShapeMismatch, l.InChannels, len(input))
	}

	inputLength := len(input[0])
	for ch, seq := range input {
		if len(seq) != inputLength {
			return nil, fmt.Errorf("%w: conv input channel %d has length %d, expected %d", ErrShapeMismatch, ch, len(seq), inputLength)
		}
	}

	if inputLength < l.KernelSize {
		return nil, fmt.Errorf("%w: conv input length %d shorter than kernel size %d", ErrShapeMismatch, inputLength, l.KernelSize)
	}

	outputLength := (inputLength-l.KernelSize)/l.Stride + 1
	output := make([][]float64, l.OutChannels)

	for c := range l.OutChannels {
		output[c] = make([]float64, outputLength)

		for i := range outputLength {
			pos := i * l.Stride
			sum := l.Biases[c]

			for inCh := range l.InChannels {
				for k := range l.KernelSize {
					sum += input[inCh][pos+k] * l.Weights[c][inCh][k]
				}
			}

			// ReLU
			if sum > 0 {
				output[c][i] = sum
			}
		}
	}

	return output, nil
}

// ConvStack applies convolution layers in sequence, each consuming the
// previous layer's full channel set
type ConvStack struct {
	Layers []*ConvLayer
}

// NewConvStack creates a stack from the given layers
func NewConvStack(layers ...*ConvLayer) *ConvStack {
	return &ConvStack{Layers: layers}
}

// Forward runs the input through every layer in order
func (s *ConvStack) Forward(input [][]float64) ([][]float64, error) {
	current := input

	for i, layer := range s.Layers {
		next, err := layer.Forward(current)
		if err != nil {
			return nil, fmt.Errorf("conv layer %d: %w", i, err)
		}
		current = next
	}

	return current, nil
}

// Transpose converts a [channel][position] activation map into a
// [position][channel] sequence for the recurrent stack
func Transpose(channels [][]float64) [][]float64 {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return [][]float64{}
	}

	length := len(channels[0])
	sequence := make([][]float64, length)

	for t := range length {
		sequence[t] = make([]float64, len(channels))
		for c := range channels {
			sequence[t][c] = channels[c][t]
		}
	}

	return sequence
}
