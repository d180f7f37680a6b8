package emotion

// TemporalSmoother keeps the last raw probability vectors of one
// prediction stream in a fixed-capacity circular buffer and blends them
// with geometric weights, oldest to newest. No shifting happens on
// eviction; the head index advances instead.
type TemporalSmoother struct {
	entries  [][]float64
	head     int
	count    int
	capacity int
	decay    float64
}

// NewTemporalSmoother creates a smoother holding up to capacity raw
// probability vectors, weighted by decay^(k-1-i) for entry i of k
func NewTemporalSmoother(capacity int, decay float64) *TemporalSmoother {
	if capacity <= 0 {
		capacity = 10
	}
	if decay <= 0 || decay >= 1 {
		decay = 0.7
	}

	return &TemporalSmoother{
		entries:  make([][]float64, capacity),
		capacity: capacity,
		decay:    decay,
	}
}

// Push appends a raw probability vector, evicting the oldest entry when
// the buffer is full, and returns the smoothed vector
func (s *TemporalSmoother) Push(probs []float64) []float64 {
	stored := make([]float64, len(probs))
	copy(stored, probs)

	if s.count < s.capacity {
		s.entries[(s.head+s.count)%s.capacity] = stored
		s.count++
	} else {
		s.entries[s.head] = stored
		s.head = (s.head + 1) % s.capacity
	}

	return s.Smoothed()
}

// Smoothed returns the geometrically weighted blend of the history,
// weights normalized to sum to 1. With a single entry this is that
// entry unchanged.
func (s *TemporalSmoother) Smoothed() []float64 {
	if s.count == 0 {
		return nil
	}

	newest := s.at(s.count - 1)
	if s.count == 1 {
		out := make([]float64, len(newest))
		copy(out, newest)
		return out
	}

	// w_i = decay^(k-1-i), i=0 is the oldest entry
	weights := make([]float64, s.count)
	weightSum := 0.0
	w := 1.0
	for i := s.count - 1; i >= 0; i-- {
		weights[i] = w
		weightSum += w
		w *= s.decay
	}

	smoothed := make([]float64, len(newest))
	for i := range s.count {
		entry := s.at(i)
		scale := weights[i] / weightSum
		for j := range smoothed {
			if j < len(entry) {
				smoothed[j] += scale * entry[j]
			}
		}
	}

	return smoothed
}

// at returns the i-th entry in oldest-first order
func (s *TemporalSmoother) at(i int) []float64 {
	return s.entries[(s.head+i)%s.capacity]
}

// Len returns the current history length
func (s *TemporalSmoother) Len() int {
	return s.count
}

// Reset clears the history
func (s *TemporalSmoother) Reset() {
	s.head = 0
	s.count = 0
	for i := range s.entries {
		s.entries[i] = nil
	}
}
