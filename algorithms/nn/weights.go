package nn

import (
	"encoding/json"
	"fmt"
)

// ConvLayerWeights is the serialized form of one convolution layer
type ConvLayerWeights struct {
	InChannels  int           `json:"in_channels"`
	OutChannels int           `json:"out_channels"`
	KernelSize  int           `json:"kernel_size"`
	Stride      int           `json:"stride"`
	Weights     [][][]float64 `json:"weights"` // [out][in][kernel]
	Biases      []float64     `json:"biases"`
}

// RNNLayerWeights is the serialized form of one recurrent layer
type RNNLayerWeights struct {
	InputSize     int         `json:"input_size"`
	HiddenSize    int         `json:"hidden_size"`
	Bidirectional bool        `json:"bidirectional"`
	WIH           [][]float64 `json:"w_ih"`
	WHH           [][]float64 `json:"w_hh"`
	BIH           []float64   `json:"b_ih"`
	BHH           []float64   `json:"b_hh"`
	WIHBack       [][]float64 `json:"w_ih_back,omitempty"`
	WHHBack       [][]float64 `json:"w_hh_back,omitempty"`
	BIHBack       []float64   `json:"b_ih_back,omitempty"`
	BHHBack       []float64   `json:"b_hh_back,omitempty"`
}

// HeadWeights is the serialized form of one classification head
type HeadWeights struct {
	InputSize int         `json:"input_size"`
	Labels    []string    `json:"labels"`
	Weights   [][]float64 `json:"weights"` // [class][input]
	Biases    []float64   `json:"biases"`
}

// ModelWeights is the external weight document for a full model:
// convolution stack, recurrent stack and the two classification heads
type ModelWeights struct {
	Conv    []ConvLayerWeights `json:"conv"`
	RNN     []RNNLayerWeights  `json:"rnn"`
	Emotion HeadWeights        `json:"emotion"`
	Style   HeadWeights        `json:"style"`
}

// LoadModelWeights parses a JSON weight document
func LoadModelWeights(data []byte) (*ModelWeights, error) {
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to parse model weights: %w", err)
	}
	return &weights, nil
}

// BuildConvLayer validates the serialized dimensions and constructs a
// convolution layer
func BuildConvLayer(w ConvLayerWeights) (*ConvLayer, error) {
	if len(w.Weights) != w.OutChannels || len(w.Biases) != w.OutChannels {
		return nil, fmt.Errorf("%w: conv weights for %d output channels, got %d weight rows and %d biases",
			ErrShapeMismatch, w.OutChannels, len(w.Weights), len(w.Biases))
	}
	for c, perIn := range w.Weights {
		if len(perIn) != w.InChannels {
			return nil, fmt.Errorf("%w: conv output channel %d has %d input channels, expected %d",
				ErrShapeMismatch, c, len(perIn), w.InChannels)
		}
		for inCh, kernel := range perIn {
			if len(kernel) != w.KernelSize {
				return nil, fmt.Errorf("%w: conv kernel [%d][%d] has size %d, expected %d",
					ErrShapeMismatch, c, inCh, len(kernel), w.KernelSize)
			}
		}
	}

	stride := w.Stride
	if stride <= 0 {
		stride = 1
	}

	return &ConvLayer{
		InChannels:  w.InChannels,
		OutChannels: w.OutChannels,
		KernelSize:  w.KernelSize,
		Stride:      stride,
		Weights:     w.Weights,
		Biases:      w.Biases,
	}, nil
}

// BuildRNNLayer validates the serialized dimensions and constructs a
// recurrent layer
func BuildRNNLayer(w RNNLayerWeights) (*RNNLayer, error) {
	if err := checkMatrix(w.WIH, w.HiddenSize, w.InputSize, "w_ih"); err != nil {
		return nil, err
	}
	if err := checkMatrix(w.WHH, w.HiddenSize, w.HiddenSize, "w_hh"); err != nil {
		return nil, err
	}
	if len(w.BIH) != w.HiddenSize || len(w.BHH) != w.HiddenSize {
		return nil, fmt.Errorf("%w: rnn biases need %d entries", ErrShapeMismatch, w.HiddenSize)
	}

	layer := &RNNLayer{
		InputSize:     w.InputSize,
		HiddenSize:    w.HiddenSize,
		Bidirectional: w.Bidirectional,
		WIH:           w.WIH,
		WHH:           w.WHH,
		BIH:           w.BIH,
		BHH:           w.BHH,
	}

	if w.Bidirectional {
		if err := checkMatrix(w.WIHBack, w.HiddenSize, w.InputSize, "w_ih_back"); err != nil {
			return nil, err
		}
		if err := checkMatrix(w.WHHBack, w.HiddenSize, w.HiddenSize, "w_hh_back"); err != nil {
			return nil, err
		}
		if len(w.BIHBack) != w.HiddenSize || len(w.BHHBack) != w.HiddenSize {
			return nil, fmt.Errorf("%w: rnn backward biases need %d entries", ErrShapeMismatch, w.HiddenSize)
		}
		layer.WIHBack = w.WIHBack
		layer.WHHBack = w.WHHBack
		layer.BIHBack = w.BIHBack
		layer.BHHBack = w.BHHBack
	}

	return layer, nil
}

// BuildLinearHead validates the serialized dimensions and constructs a
// classification head
func BuildLinearHead(w HeadWeights) (*LinearHead, error) {
	if err := checkMatrix(w.Weights, len(w.Labels), w.InputSize, "head weights"); err != nil {
		return nil, err
	}
	if len(w.Biases) != len(w.Labels) {
		return nil, fmt.Errorf("%w: head biases need %d entries, got %d", ErrShapeMismatch, len(w.Labels), len(w.Biases))
	}

	return &LinearHead{
		InputSize: w.InputSize,
		Labels:    w.Labels,
		Weights:   w.Weights,
		Biases:    w.Biases,
	}, nil
}

func checkMatrix(m [][]float64, rows, cols int, name string) error {
	if len(m) != rows {
		return fmt.Errorf("%w: %s needs %d rows, got %d", ErrShapeMismatch, name, rows, len(m))
	}
	for r, row := range m {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d has %d columns, expected %d", ErrShapeMismatch, name, r, len(row), cols)
		}
	}
	return nil
}
