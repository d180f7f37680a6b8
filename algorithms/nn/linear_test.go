package nn

import (
	"errors"
	"math"
	"testing"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	cases := [][]float64{
		{0, 0, 0},
		{1, 2, 3, 4},
		{-100, 0, 100},
		{1e8, 1e8 + 1},
		{-5.5},
	}

	for _, logits := range cases {
		probs := Softmax(logits)

		sum := 0.0
		for _, p := range probs {
			if p < 0 || p > 1 {
				t.Fatalf("probability %f outside [0,1] for logits %v", p, logits)
			}
			if math.IsNaN(p) || math.IsInf(p, 0) {
				t.Fatalf("non-finite probability for logits %v", logits)
			}
			sum += p
		}

		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("softmax sum %f for logits %v, expected 1", sum, logits)
		}
	}
}

func TestSoftmaxUniform(t *testing.T) {
	probs := Softmax([]float64{2, 2, 2, 2})
	for _, p := range probs {
		if math.Abs(p-0.25) > 1e-12 {
			t.Errorf("expected uniform 0.25, got %v", probs)
		}
	}
}

func TestArgMax(t *testing.T) {
	if got := ArgMax([]float64{0.1, 0.7, 0.2}); got != 1 {
		t.Errorf("ArgMax = %d, expected 1", got)
	}
	if got := ArgMax(nil); got != -1 {
		t.Errorf("ArgMax(nil) = %d, expected -1", got)
	}
}

func TestLinearHeadForward(t *testing.T) {
	head := NewLinearHead(8, []string{"a", "b", "c"}, NewSeededInitializer(5))

	input := make([]float64, 8)
	for i := range input {
		input[i] = float64(i) * 0.25
	}

	probs, err := head.Forward(input)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	if len(probs) != 3 {
		t.Fatalf("expected 3 probabilities, got %d", len(probs))
	}

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("head probabilities sum %f, expected 1", sum)
	}
}

func TestLinearHeadShapeMismatch(t *testing.T) {
	head := NewLinearHead(8, []string{"a", "b"}, NewSeededInitializer(5))

	_, err := head.Forward(make([]float64, 4))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestSeededInitializerDeterministic(t *testing.T) {
	a := NewSeededInitializer(42).Matrix(4, 6)
	b := NewSeededInitializer(42).Matrix(4, 6)

	for r := range a {
		for c := range a[r] {
			if a[r][c] != b[r][c] {
				t.Fatalf("seeded matrices differ at [%d][%d]", r, c)
			}
		}
	}

	other := NewSeededInitializer(43).Matrix(4, 6)
	same := true
	for r := range a {
		for c := range a[r] {
			if a[r][c] != other[r][c] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical matrices")
	}
}
