package emotion

// Config controls the engine's analysis geometry and smoothing
// behavior. Zero fields are replaced with defaults at construction.
type Config struct {
	// SampleRate is the nominal input rate. No resampling happens
	// internally; callers must supply audio at this rate.
	SampleRate int `json:"sample_rate"`

	// WindowSize and HopSize define the analysis frame geometry
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`

	// ChunkSize is the per-call chunk length for the real-time path
	// and the slide window for batch analysis
	ChunkSize int `json:"chunk_size"`

	// BatchHop is the slide hop for batch analysis
	BatchHop int `json:"batch_hop"`

	// HistorySize bounds the per-stream prediction history
	HistorySize int `json:"history_size"`

	// SmoothingDecay is the geometric weight ratio applied
	// oldest-to-newest across the history
	SmoothingDecay float64 `json:"smoothing_decay"`

	// ConfidenceThreshold discards batch windows below this combined
	// confidence. Zero means unset and takes the default; a negative
	// value disables filtering so every window is kept.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// Seed drives deterministic weight initialization when no external
	// weights are supplied
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the engine's nominal configuration:
// 16 kHz audio, 512-sample windows with 256-sample hop, 4096-sample
// chunks
func DefaultConfig() Config {
	return Config{
		SampleRate:          16000,
		WindowSize:          512,
		HopSize:             256,
		ChunkSize:           4096,
		BatchHop:            2048,
		HistorySize:         10,
		SmoothingDecay:      0.7,
		ConfidenceThreshold: 0.5,
		Seed:                42,
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()

	if c.SampleRate <= 0 {
		c.SampleRate = defaults.SampleRate
	}
	if c.WindowSize <= 0 {
		c.WindowSize = defaults.WindowSize
	}
	if c.HopSize <= 0 {
		c.HopSize = defaults.HopSize
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaults.ChunkSize
	}
	if c.BatchHop <= 0 {
		c.BatchHop = defaults.BatchHop
	}
	if c.HistorySize <= 0 {
		c.HistorySize = defaults.HistorySize
	}
	if c.SmoothingDecay <= 0 || c.SmoothingDecay >= 1 {
		c.SmoothingDecay = defaults.SmoothingDecay
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = defaults.ConfidenceThreshold
	} else if c.ConfidenceThreshold < 0 {
		c.ConfidenceThreshold = 0
	}
	if c.Seed == 0 {
		c.Seed = defaults.Seed
	}

	return c
}
