// Package emotion turns short audio chunks into smoothed emotion and
// style predictions. It combines a DSP front end (spectral, prosodic
// and voice-quality feature extraction), a hand-written neural forward
// pass (1-D convolution stack, bidirectional recurrent stack, two
// softmax heads), and temporal smoothing over a bounded prediction
// history.
package emotion

import (
	"fmt"
	"time"

	"github.com/Thetason/obiwan-emotion/algorithms/nn"
	"github.com/Thetason/obiwan-emotion/logging"
	"gonum.org/v1/gonum/stat"
)

// Default architecture when no external weights are supplied
const (
	convChannels1 = 8
	convChannels2 = 16
	convKernel    = 3
	rnnHidden     = 24
)

// Recognizer turns audio chunks into smoothed emotion and style
// predictions. It owns the bounded prediction histories, so concurrent
// callers of one instance must serialize their calls.
type Recognizer struct {
	config Config

	assembler   *FeatureAssembler
	conv        *nn.ConvStack
	rnn         *nn.RNNStack
	emotionHead *nn.LinearHead
	styleHead   *nn.LinearHead

	emotionHistory *TemporalSmoother
	styleHistory   *TemporalSmoother

	logger logging.Logger
}

// NewRecognizer creates a recognizer with deterministically seeded
// weights (cfg.Seed). Two recognizers built from the same config
// produce byte-identical outputs for identical inputs.
func NewRecognizer(cfg Config) *Recognizer {
	cfg = cfg.withDefaults()

	init := nn.NewSeededInitializer(cfg.Seed)

	conv := nn.NewConvStack(
		nn.NewConvLayer(1, convChannels1, convKernel, 1, init),
		nn.NewConvLayer(convChannels1, convChannels2, convKernel, 1, init),
	)

	rnn := nn.NewRNNStack(
		nn.NewRNNLayer(convChannels2, rnnHidden, true, init),
		nn.NewRNNLayer(2*rnnHidden, rnnHidden, true, init),
	)

	return newRecognizer(cfg, conv, rnn,
		nn.NewLinearHead(rnn.OutputSize(), EmotionLabels, init),
		nn.NewLinearHead(rnn.OutputSize(), StyleLabels, init))
}

// NewRecognizerFromWeights creates a recognizer from an external weight
// document instead of seeded initialization
func NewRecognizerFromWeights(cfg Config, weights *nn.ModelWeights) (*Recognizer, error) {
	cfg = cfg.withDefaults()

	convLayers := make([]*nn.ConvLayer, len(weights.Conv))
	for i, w := range weights.Conv {
		layer, err := nn.BuildConvLayer(w)
		if err != nil {
			return nil, fmt.Errorf("conv layer %d: %w", i, err)
		}
		convLayers[i] = layer
	}

	rnnLayers := make([]*nn.RNNLayer, len(weights.RNN))
	for i, w := range weights.RNN {
		layer, err := nn.BuildRNNLayer(w)
		if err != nil {
			return nil, fmt.Errorf("rnn layer %d: %w", i, err)
		}
		rnnLayers[i] = layer
	}

	emotionHead, err := nn.BuildLinearHead(weights.Emotion)
	if err != nil {
		return nil, fmt.Errorf("emotion head: %w", err)
	}

	styleHead, err := nn.BuildLinearHead(weights.Style)
	if err != nil {
		return nil, fmt.Errorf("style head: %w", err)
	}

	return newRecognizer(cfg, nn.NewConvStack(convLayers...), nn.NewRNNStack(rnnLayers...), emotionHead, styleHead), nil
}

func newRecognizer(cfg Config, conv *nn.ConvStack, rnn *nn.RNNStack, emotionHead, styleHead *nn.LinearHead) *Recognizer {
	return &Recognizer{
		config:         cfg,
		assembler:      NewFeatureAssembler(cfg.SampleRate, cfg.WindowSize, cfg.HopSize),
		conv:           conv,
		rnn:            rnn,
		emotionHead:    emotionHead,
		styleHead:      styleHead,
		emotionHistory: NewTemporalSmoother(cfg.HistorySize, cfg.SmoothingDecay),
		styleHistory:   NewTemporalSmoother(cfg.HistorySize, cfg.SmoothingDecay),
		logger: logging.WithFields(logging.Fields{
			"component": "emotion_recognizer",
		}),
	}
}

// Config returns the effective configuration
func (r *Recognizer) Config() Config {
	return r.config
}

// RecognizeRealTime classifies one chunk and blends the raw prediction
// into the bounded histories. Internal failures are recovered locally:
// the call logs and returns a neutral result, never an error, so the
// consuming loop is never blocked.
func (r *Recognizer) RecognizeRealTime(chunk []float64) CombinedResult {
	emotionProbs, styleProbs, err := r.classify(chunk)
	if err != nil {
		r.logger.Warn("chunk classification failed, returning neutral result", logging.Fields{
			"error":       err.Error(),
			"chunk_len":   len(chunk),
			"sample_rate": r.config.SampleRate,
		})
		return EmptyResult()
	}

	smoothedEmotion := r.emotionHistory.Push(emotionProbs)
	smoothedStyle := r.styleHistory.Push(styleProbs)

	emotion := predictionFromProbs(smoothedEmotion, EmotionLabels)
	style := predictionFromProbs(smoothedStyle, StyleLabels)

	return CombinedResult{
		Emotion:    emotion,
		Style:      style,
		Confidence: (emotion.Confidence + style.Confidence) / 2.0,
		Timestamp:  time.Now(),
	}
}

// AnalyzeBatch slides the chunk window across the whole buffer, runs
// the real-time path per window, and aggregates windows that meet the
// confidence threshold by per-stream majority vote
func (r *Recognizer) AnalyzeBatch(buffer []float64) CombinedResult {
	if len(buffer) < r.config.ChunkSize {
		r.logger.Warn("batch buffer shorter than one window", logging.Fields{
			"buffer_len": len(buffer),
			"chunk_size": r.config.ChunkSize,
		})
		return EmptyResult()
	}

	numWindows := (len(buffer)-r.config.ChunkSize)/r.config.BatchHop + 1

	var kept []CombinedResult
	for i := range numWindows {
		start := i * r.config.BatchHop
		result := r.RecognizeRealTime(buffer[start : start+r.config.ChunkSize])

		if result.Confidence >= r.config.ConfidenceThreshold {
			kept = append(kept, result)
		}
	}

	r.logger.Debug("batch analysis complete", logging.Fields{
		"windows": numWindows,
		"kept":    len(kept),
	})

	if len(kept) == 0 {
		return EmptyResult()
	}

	return aggregateResults(kept)
}

// Reset clears the prediction histories and inter-chunk analyzer state
func (r *Recognizer) Reset() {
	r.emotionHistory.Reset()
	r.styleHistory.Reset()
	r.assembler.Reset()
}

// classify runs the full pipeline once: features -> convolution ->
// recurrence -> both heads
func (r *Recognizer) classify(chunk []float64) ([]float64, []float64, error) {
	features, err := r.assembler.Assemble(chunk)
	if err != nil {
		return nil, nil, err
	}

	// The feature vector enters the convolution stack as a
	// single-channel sequence
	convOut, err := r.conv.Forward([][]float64{features.Vector})
	if err != nil {
		return nil, nil, err
	}

	hidden, err := r.rnn.Forward(nn.Transpose(convOut))
	if err != nil {
		return nil, nil, err
	}

	emotionProbs, err := r.emotionHead.Forward(hidden)
	if err != nil {
		return nil, nil, err
	}

	styleProbs, err := r.styleHead.Forward(hidden)
	if err != nil {
		return nil, nil, err
	}

	return emotionProbs, styleProbs, nil
}

// aggregateResults majority-votes labels per stream over the kept
// windows; ties break toward the first-seen label and the winner's
// confidence is the mean over its occurrences
func aggregateResults(results []CombinedResult) CombinedResult {
	emotion := voteStream(results, func(r CombinedResult) Prediction { return r.Emotion })
	style := voteStream(results, func(r CombinedResult) Prediction { return r.Style })

	return CombinedResult{
		Emotion:    emotion,
		Style:      style,
		Confidence: (emotion.Confidence + style.Confidence) / 2.0,
		Timestamp:  time.Now(),
	}
}

func voteStream(results []CombinedResult, pick func(CombinedResult) Prediction) Prediction {
	counts := make(map[string]int)
	var order []string

	for _, r := range results {
		label := pick(r).Label
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	winner := ""
	best := 0
	for _, label := range order {
		if counts[label] > best {
			winner = label
			best = counts[label]
		}
	}

	var confidences []float64
	var probSum []float64
	for _, r := range results {
		p := pick(r)
		if p.Label != winner {
			continue
		}
		confidences = append(confidences, p.Confidence)
		if probSum == nil {
			probSum = make([]float64, len(p.Probabilities))
		}
		for i, v := range p.Probabilities {
			if i < len(probSum) {
				probSum[i] += v
			}
		}
	}

	for i := range probSum {
		probSum[i] /= float64(len(confidences))
	}

	return Prediction{
		Label:         winner,
		Confidence:    stat.Mean(confidences, nil),
		Probabilities: probSum,
	}
}
